package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SITEMAPS", "NOTIFICATION_URL", "CRITICAL_URL", "IGNORE_URLS",
		"LOG_DIR", "LOG_LEVEL", "HTTP_TIMEOUT_MS", "MAX_CONCURRENT_SITEMAPS", "USER_AGENT", "NOTIFY_TOKEN"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_PrecedenceEnvFileFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITEMAPS", "https://env.example/sitemap.xml")
	t.Setenv("CRITICAL_URL", "https://env.example/critical")
	t.Setenv("NOTIFICATION_URL", "https://env.example/notify")

	path := filepath.Join(t.TempDir(), "checker.yaml")
	yml := "notification_url: https://file.example/notify\nsitemaps: [https://file.example/sitemap.xml]\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "validate", "--config", path, "-s", "https://flag.example/sitemap.xml")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, want := range []string{
		"✔ sitemap https://flag.example/sitemap.xml",
		"✔ notification url https://file.example/notify",
		"✔ critical url https://env.example/critical",
		"✔ configuration valid",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "env.example/sitemap.xml") || strings.Contains(out, "file.example/sitemap.xml") {
		t.Fatalf("flag sitemaps must replace env and file ones:\n%s", out)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	_, errOut, err := execute(t, "validate", "-s", "ftp://x", "--concurrency=-2")
	if !errors.Is(err, errReported) {
		t.Fatalf("want errReported, got %v", err)
	}
	if n := strings.Count(errOut, "✖"); n != 3 {
		// notification, critical, concurrency
		t.Fatalf("want 3 problems, got %d:\n%s", n, errOut)
	}
	if !strings.Contains(errOut, "⚠ sitemap \"ftp://x\"") {
		t.Fatalf("bad sitemap should be a warning:\n%s", errOut)
	}
}

func TestRoot_InvalidConfigTouchesNoNetwork(t *testing.T) {
	clearEnv(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, _, err := execute(t, "-s", srv.URL+"/sitemap.xml", "-w", srv.URL+"/notify")
	if err == nil || !strings.Contains(err.Error(), "critical url is required") {
		t.Fatalf("want config error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("no request may be made on a config error, got %d", hits.Load())
	}
}

func TestRoot_RunsPassAndPrintsSummary(t *testing.T) {
	clearEnv(t)
	var notified, critical atomic.Int32
	var gotAuth atomic.Value

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mux.HandleFunc("/notify", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		notified.Add(1)
	})
	mux.HandleFunc("/critical", func(w http.ResponseWriter, r *http.Request) { critical.Add(1) })
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<urlset><url><loc>` + srv.URL + `/ok</loc></url><url><loc>` + srv.URL + `/gone</loc></url></urlset>`))
	})

	out, _, err := execute(t,
		"-s", srv.URL+"/sitemap.xml",
		"-w", srv.URL+"/notify",
		"-c", srv.URL+"/critical",
		"--timeout", "2s",
		"--notify-token", "tok",
		"--log-level", "error",
		"--summary",
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if notified.Load() != 1 || critical.Load() != 1 {
		t.Fatalf("want one post per endpoint, got %d/%d", notified.Load(), critical.Load())
	}
	if gotAuth.Load() != "Bearer tok" {
		t.Fatalf("want bearer token on posts, got %v", gotAuth.Load())
	}
	if !strings.Contains(out, "Success") || !strings.Contains(out, srv.URL+"/gone") {
		t.Fatalf("summary missing result:\n%s", out)
	}
}

func TestRoot_BadSitemapDoesNotStopOthers(t *testing.T) {
	clearEnv(t)
	var mu sync.Mutex
	var posted []string

	mux := http.NewServeMux()
	mux.HandleFunc("/notify", func(w http.ResponseWriter, r *http.Request) {
		var res struct {
			Status     string `json:"status"`
			SitemapURL string `json:"sitemap_url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&res)
		mu.Lock()
		posted = append(posted, res.Status+" "+res.SitemapURL)
		mu.Unlock()
	})
	mux.HandleFunc("/critical", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<urlset></urlset>`))
	})

	_, _, err := execute(t,
		"-s", "ftp://x",
		"-s", srv.URL+"/sitemap.xml",
		"-w", srv.URL+"/notify",
		"-c", srv.URL+"/critical",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("a bad sitemap must not fail the run: %v", err)
	}
	sort.Strings(posted)
	want := []string{"Success " + srv.URL + "/sitemap.xml", "UnreachableSitemap ftp://x"}
	if len(posted) != 2 || posted[0] != want[0] || posted[1] != want[1] {
		t.Fatalf("want %v, got %v", want, posted)
	}
}
