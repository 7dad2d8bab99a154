// Package verify confirms that recommended URLs are live. A fixed worker
// pool issues HEAD requests behind a shared pacer so the target site never
// sees an unbounded burst.
package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/types"
)

const maxRedirects = 5

// Options bound a verification batch. Workers and Timeout fall back to the
// configuration defaults when unset; a zero Delay disables pacing and a zero
// MaxRetries disables the retry.
type Options struct {
	Workers    int
	Delay      time.Duration
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	UserAgent  string
}

// FromConfig translates the verification section of the analysis config.
// DelayMS and MaxRetries are pointers there so an explicit 0 (pacing off,
// retry off) is distinguishable from an absent field; nil reads as 0 here
// because an unmerged config carries no default to apply.
func FromConfig(v config.Verification) Options {
	opts := Options{
		Workers: v.Workers,
		Timeout: time.Duration(v.TimeoutMS) * time.Millisecond,
		Backoff: time.Duration(v.BackoffMS) * time.Millisecond,
	}
	if v.DelayMS != nil {
		opts.Delay = time.Duration(*v.DelayMS) * time.Millisecond
	}
	if v.MaxRetries != nil {
		opts.MaxRetries = *v.MaxRetries
	}
	return opts
}

// Verifier checks bounded lists of URLs. Safe for reuse across batches; the
// pacer is shared so concurrent batches still respect the request rate.
type Verifier struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
}

// New builds a Verifier. The underlying client never follows redirects on its
// own; the verifier walks Location hops manually so the final URL can be
// reported.
func New(opts Options) *Verifier {
	defaults := config.DefaultConfig().Verification
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(defaults.TimeoutMS) * time.Millisecond
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries > 1 {
		opts.MaxRetries = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	return &Verifier{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: limiter,
	}
}

// VerifyBatch checks every URL and returns one result per input, in input
// order. A task-index channel feeds the workers and each worker writes only
// the result slots for the indexes it pulled, so the slice needs no lock.
// The batch always completes: failures land in their slot as status "error".
func (v *Verifier) VerifyBatch(ctx context.Context, urls []string) *types.BatchVerification {
	start := time.Now()
	results := make([]types.VerificationResult, len(urls))

	workers := v.opts.Workers
	if workers > len(urls) {
		workers = len(urls)
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = v.verifyOne(ctx, urls[i])
			}
		}()
	}
	for i := range urls {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	batch := &types.BatchVerification{
		Results:    results,
		WallTimeMS: time.Since(start).Milliseconds(),
	}
	for _, r := range results {
		if r.Status == types.VerifyOK {
			batch.OKCount++
		} else {
			batch.ErrorCount++
		}
		if r.IsIndexable {
			batch.IndexableCount++
		}
	}
	return batch
}

// verifyOne runs the request with at most one retry on request failures and
// gateway errors (502/503/504).
func (v *Verifier) verifyOne(ctx context.Context, rawURL string) types.VerificationResult {
	start := time.Now()
	result := types.VerificationResult{URL: rawURL}

	attempts := v.opts.MaxRetries + 1
	var lastErr *Error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && v.opts.Backoff > 0 {
			select {
			case <-time.After(v.opts.Backoff):
			case <-ctx.Done():
			}
		}
		if err := v.limiter.Wait(ctx); err != nil {
			lastErr = &Error{URL: rawURL, Message: "batch cancelled", Cause: err}
			break
		}

		code, finalURL, indexable, verr := v.fetch(ctx, rawURL)
		if verr != nil {
			lastErr = verr
			continue
		}
		if retryableStatus(code) && attempt < attempts-1 {
			lastErr = &Error{URL: rawURL, Message: fmt.Sprintf("upstream returned %d", code)}
			continue
		}

		result.Status = types.VerifyOK
		result.StatusCode = code
		result.FinalURL = finalURL
		result.IsIndexable = indexable
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}

	result.Status = types.VerifyError
	result.ElapsedMS = time.Since(start).Milliseconds()
	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

// fetch issues one logical request, following up to maxRedirects Location
// hops. HEAD first, with a GET fallback on 405 for servers that refuse HEAD.
func (v *Verifier) fetch(ctx context.Context, rawURL string) (int, string, bool, *Error) {
	current := rawURL
	for hop := 0; hop <= maxRedirects; hop++ {
		resp, err := v.do(ctx, http.MethodHead, current)
		if err != nil {
			return 0, "", false, &Error{URL: rawURL, Message: "request failed", Cause: err}
		}
		if resp.StatusCode == http.StatusMethodNotAllowed {
			drain(resp)
			resp, err = v.do(ctx, http.MethodGet, current)
			if err != nil {
				return 0, "", false, &Error{URL: rawURL, Message: "request failed", Cause: err}
			}
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			drain(resp)
			if location == "" {
				return resp.StatusCode, current, false, nil
			}
			next, err := resolveLocation(current, location)
			if err != nil {
				return 0, "", false, &Error{URL: rawURL, Message: "bad redirect location", Cause: err}
			}
			current = next
			continue
		}

		indexable := resp.StatusCode == http.StatusOK && !hasNoindex(resp.Header)
		drain(resp)
		return resp.StatusCode, current, indexable, nil
	}
	return 0, "", false, &Error{URL: rawURL, Message: fmt.Sprintf("more than %d redirects", maxRedirects)}
}

func (v *Verifier) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	if v.opts.UserAgent != "" {
		req.Header.Set("User-Agent", v.opts.UserAgent)
	}
	return v.client.Do(req)
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func hasNoindex(h http.Header) bool {
	return strings.Contains(strings.ToLower(h.Get("X-Robots-Tag")), "noindex")
}

func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
