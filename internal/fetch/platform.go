// Package fetch - platform.go provides storefront platform detection and
// platform-specific wrapper selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known e-commerce storefront platform.
type Platform string

const (
	// PlatformShopify is the Shopify storefront platform
	PlatformShopify Platform = "shopify"
	// PlatformMagento is the Magento / Adobe Commerce platform
	PlatformMagento Platform = "magento"
	// PlatformPrestaShop is the PrestaShop platform
	PlatformPrestaShop Platform = "prestashop"
	// PlatformWooCommerce is the WooCommerce plugin on WordPress
	PlatformWooCommerce Platform = "woocommerce"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the storefront platform from the URL and the
// fetched HTML. Most stores are self-hosted, so the HTML markers carry more
// signal than the hostname.
func DetectPlatform(urlStr, html string) Platform {
	if parsed, err := url.Parse(urlStr); err == nil {
		host := strings.ToLower(parsed.Host)
		if strings.Contains(host, "myshopify.com") {
			return PlatformShopify
		}
	}

	lower := strings.ToLower(html)

	// Shopify markers
	if strings.Contains(lower, "cdn.shopify.com") ||
		strings.Contains(lower, "shopify.theme") {
		return PlatformShopify
	}

	// Magento markers
	if strings.Contains(lower, "mage/cookies") ||
		strings.Contains(lower, "magento_") ||
		strings.Contains(lower, "x-magento-init") {
		return PlatformMagento
	}

	// PrestaShop markers
	if strings.Contains(lower, "prestashop") ||
		strings.Contains(lower, "/modules/ps_") {
		return PlatformPrestaShop
	}

	// WooCommerce markers
	if strings.Contains(lower, "woocommerce") ||
		strings.Contains(lower, "wp-content/plugins/woo") {
		return PlatformWooCommerce
	}

	return PlatformUnknown
}

// PlatformWrapperSelectors returns wrapper container selectors for a specific
// platform, falling back to the generic list.
func PlatformWrapperSelectors(platform Platform) []string {
	switch platform {
	case PlatformShopify:
		return append([]string{
			".footer__seo-links",
			".seo-collection-links",
			"[data-section-type='seo-links']",
		}, WrapperSelectors()...)
	case PlatformMagento:
		return append([]string{
			".footer-seo",
			".seo-links-block",
			".widget.block-static-block .seo-links",
		}, WrapperSelectors()...)
	case PlatformPrestaShop:
		return append([]string{
			"#custom-text .seo-links",
			".linklist-seo",
			".footer-seo-links",
		}, WrapperSelectors()...)
	case PlatformWooCommerce:
		return append([]string{
			".widget_seo_links",
			".footer-widgets .seo-links",
		}, WrapperSelectors()...)
	default:
		return WrapperSelectors()
	}
}
