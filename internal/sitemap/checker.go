package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/hamed0406/sitemapchecker/internal/domain"
	"github.com/hamed0406/sitemapchecker/internal/probe"
)

// Checker fetches one sitemap and probes every page it lists, one at a time.
type Checker struct {
	Logger    *zap.Logger
	Client    *http.Client
	Prober    probe.Checker
	Ignore    IgnoreSet
	UserAgent string
}

func NewChecker(logger *zap.Logger, client *http.Client, prober probe.Checker, ignore IgnoreSet, userAgent string) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{
		Logger:    logger,
		Client:    client,
		Prober:    prober,
		Ignore:    ignore,
		UserAgent: userAgent,
	}
}

// Check never fails: sitemap and page problems are reported through the
// returned result.
func (c *Checker) Check(ctx context.Context, sitemapURL string) domain.SiteCheckResult {
	log := c.Logger.With(zap.String("sitemap_url", sitemapURL))

	log.Info("sitemap_fetch")
	req, err := probe.NewRequest(ctx, http.MethodGet, sitemapURL, c.UserAgent)
	if err != nil {
		log.Warn("sitemap_unreachable", zap.Error(err))
		return domain.Unreachable(sitemapURL)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Warn("sitemap_unreachable", zap.Error(err))
		return domain.Unreachable(sitemapURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("sitemap_non_200", zap.Int("status", resp.StatusCode))
	}

	text, err := readBody(resp)
	if err != nil {
		log.Warn("sitemap_unreadable", zap.Error(err))
		return domain.Invalid(sitemapURL)
	}

	all, err := Extract(bytes.NewReader(text))
	if err != nil {
		log.Warn("sitemap_invalid", zap.Error(err))
		return domain.Invalid(sitemapURL)
	}

	log.Info("sitemap_pinging", zap.Int("url_count", len(all)))
	var unreachable []string
	for i, page := range all {
		if c.Ignore.Contains(page) {
			log.Debug("page_ignored", zap.String("url", page))
			continue
		}

		log.Debug("page_probe", zap.Int("index", i), zap.String("url", page))
		out := c.Prober.Check(ctx, page)
		if !out.Success {
			log.Error("page_unreachable",
				zap.String("url", page),
				zap.Int("status", out.StatusCode),
				zap.String("reason", out.Reason),
				zap.String("message", out.Message),
			)
			unreachable = append(unreachable, page)
			continue
		}
		log.Debug("page_ok",
			zap.String("url", page),
			zap.Float64("latency_ms", out.LatencyMS),
		)
	}

	return domain.Checked(sitemapURL, len(all), unreachable)
}

// declEncoding matches the encoding pseudo-attribute of a leading XML
// declaration.
var declEncoding = regexp.MustCompile(`^(\x{FEFF})?(\s*<\?xml\s[^>]*?\bencoding\s*=\s*)["'][^"']*["']`)

// readBody reads the response as UTF-8 text, transcoding when the
// Content-Type header names another charset. The header wins over the XML
// declaration, whose encoding is then rewritten to UTF-8 so the parser does
// not decode the text a second time.
func readBody(resp *http.Response) ([]byte, error) {
	label := contentCharset(resp.Header.Get("Content-Type"))
	if label == "" {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return b, nil
	}

	dec, err := charset.NewReaderLabel(label, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %q body: %w", label, err)
	}
	b, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return declEncoding.ReplaceAll(b, []byte(`$1${2}"UTF-8"`)), nil
}

func contentCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
