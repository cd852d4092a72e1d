package domain

import (
	"fmt"
	"strings"
)

// SiteCheckStatus tells whether a sitemap was retrieved and parsed.
type SiteCheckStatus string

const (
	StatusSuccess SiteCheckStatus = "Success"
	// StatusUnreachableSitemap is used when the sitemap itself could not be fetched.
	StatusUnreachableSitemap SiteCheckStatus = "UnreachableSitemap"
	// StatusInvalidSitemap is used when the sitemap body could not be read or parsed.
	StatusInvalidSitemap SiteCheckStatus = "InvalidSitemap"
)

func (s SiteCheckStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusUnreachableSitemap, StatusInvalidSitemap:
		return true
	}
	return false
}

// PageSeparator joins unreachable page URLs in SiteCheckResult.UnreachablePages.
const PageSeparator = ", "

// SiteCheckResult summarizes one sitemap check. Absent counters are nil and
// omitted from the JSON body.
type SiteCheckResult struct {
	Status           SiteCheckStatus `json:"status"`
	SitemapURL       string          `json:"sitemap_url"`
	PageTotal        *int            `json:"page_total,omitempty"`
	UnreachableTotal *int            `json:"unreachable_total,omitempty"`
	UnreachablePages *string         `json:"unreachable_pages,omitempty"`
}

func Unreachable(sitemapURL string) SiteCheckResult {
	return SiteCheckResult{Status: StatusUnreachableSitemap, SitemapURL: sitemapURL}
}

func Invalid(sitemapURL string) SiteCheckResult {
	return SiteCheckResult{Status: StatusInvalidSitemap, SitemapURL: sitemapURL}
}

// Checked builds a Success result. pageTotal counts every extracted URL,
// ignored ones included; unreachable keeps sitemap order. It panics when
// more pages are unreachable than were listed.
func Checked(sitemapURL string, pageTotal int, unreachable []string) SiteCheckResult {
	if pageTotal < len(unreachable) {
		panic(fmt.Sprintf("domain.Checked: %d unreachable pages out of %d for %s", len(unreachable), pageTotal, sitemapURL))
	}
	total := pageTotal
	down := len(unreachable)
	r := SiteCheckResult{
		Status:           StatusSuccess,
		SitemapURL:       sitemapURL,
		PageTotal:        &total,
		UnreachableTotal: &down,
	}
	if down > 0 {
		pages := strings.Join(unreachable, PageSeparator)
		r.UnreachablePages = &pages
	}
	return r
}

// HasUnreachable reports whether the result lists any unreachable page.
func (r SiteCheckResult) HasUnreachable() bool {
	return r.UnreachablePages != nil
}
