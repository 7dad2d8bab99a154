// Package fetch - audit.go ties fetching, platform detection, and wrapper
// extraction into a single live inspection of a category page.
package fetch

import (
	"context"
	"time"
)

// WrapperAudit is the artifact of inspecting one live page for its SEO
// filter wrapper.
type WrapperAudit struct {
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	StatusCode  int      `json:"status_code"`
	FromCache   bool     `json:"from_cache"`
	UsedBrowser bool     `json:"used_browser"`
	LinkCount   int      `json:"link_count"`
	Links       []string `json:"links,omitempty"`
}

// AuditOptions configures a wrapper audit.
type AuditOptions struct {
	// Render enables the headless-browser pass when the static HTML has no
	// wrapper links. Requires Chrome on the host.
	Render         bool
	BrowserTimeout time.Duration
	Verbose        bool
	// Selectors overrides the platform-derived wrapper selectors when set.
	Selectors []string
}

// AuditWrapper fetches a page and extracts its wrapper links. When the static
// HTML yields none and rendering is enabled, the page is re-rendered in a
// headless browser and extraction runs again, since many storefronts build
// the wrapper client-side.
func AuditWrapper(ctx context.Context, urlStr string, fetcher *CachedFetcher, opts *AuditOptions) (*WrapperAudit, error) {
	if fetcher == nil {
		fetcher = NewCachedFetcher(nil, nil)
	}
	if opts == nil {
		opts = &AuditOptions{}
	}

	result, err := fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(urlStr, result.HTML)
	selectors := opts.Selectors
	if len(selectors) == 0 {
		selectors = PlatformWrapperSelectors(platform)
	}

	links, err := ExtractWrapperLinks(result.HTML, urlStr, selectors)
	if err != nil {
		return nil, err
	}

	audit := &WrapperAudit{
		URL:        urlStr,
		Platform:   platform,
		StatusCode: result.StatusCode,
		FromCache:  result.FromCache,
		LinkCount:  len(links),
		Links:      links,
	}

	if ShouldUseBrowser(links) && opts.Render {
		timeout := opts.BrowserTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		rendered, err := WithBrowser(ctx, urlStr, timeout, opts.Verbose)
		if err != nil {
			// The static result stands; rendering is best effort
			return audit, nil
		}

		// The rendered DOM may expose platform markers the raw HTML lacked
		if platform == PlatformUnknown {
			if p := DetectPlatform(urlStr, rendered); p != PlatformUnknown {
				audit.Platform = p
				if len(opts.Selectors) == 0 {
					selectors = PlatformWrapperSelectors(p)
				}
			}
		}

		links, err = ExtractWrapperLinks(rendered, urlStr, selectors)
		if err == nil && len(links) > 0 {
			audit.UsedBrowser = true
			audit.LinkCount = len(links)
			audit.Links = links
		}
	}

	return audit, nil
}
