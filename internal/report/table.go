package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// Summary prints one row per sitemap, followed by one continuation row for
// every further unreachable page. Absent counts print as "-".
func Summary(w io.Writer, results []domain.SiteCheckResult) {
	tbl := table.New("Sitemap", "Status", "Pages", "Unreachable", "Unreachable Pages").WithWriter(w)
	for _, r := range results {
		var pages []string
		if r.UnreachablePages != nil && *r.UnreachablePages != "" {
			pages = strings.Split(*r.UnreachablePages, domain.PageSeparator)
		}
		first := "-"
		if len(pages) > 0 {
			first = pages[0]
		}
		tbl.AddRow(r.SitemapURL, string(r.Status), count(r.PageTotal), count(r.UnreachableTotal), first)
		for _, p := range pages[min(1, len(pages)):] {
			tbl.AddRow("", "", "", "", p)
		}
	}
	tbl.Print()
}

func count(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
