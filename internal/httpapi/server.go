package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/sitemapchecker/internal/httpapi/middleware"
	"github.com/hamed0406/sitemapchecker/internal/notify"
	"github.com/hamed0406/sitemapchecker/internal/repo"
)

// Server receives checker results posted to the notification and critical
// webhooks and exposes what it got.
type Server struct {
	Logger     *zap.Logger
	Deliveries repo.DeliveryStore
}

func NewServer(l *zap.Logger, ds repo.DeliveryStore) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Deliveries: ds}
}

// Router wires the routes. Everything except /healthz is rate limited per
// client IP and, when keys is non-empty, requires one of them.
func (s *Server) Router(keys []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))
		r.Use(apimw.RequireKey(keys))

		r.Post("/hooks/{channel}", s.handleReceive)
		r.Get("/api/deliveries", s.handleListDeliveries)
		r.Get("/api/results/latest", s.handleLatest)
	})

	return r
}

func validChannel(c string) bool {
	return c == notify.ChannelNotification || c == notify.ChannelCritical
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	if !validChannel(channel) {
		writeError(w, http.StatusNotFound, "unknown channel")
		return
	}

	d := &repo.Delivery{Channel: channel}
	if err := json.NewDecoder(r.Body).Decode(&d.Result); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if !d.Result.Status.Valid() || d.Result.SitemapURL == "" {
		writeError(w, http.StatusBadRequest, "unknown status or missing sitemap_url")
		return
	}

	if err := s.Deliveries.Append(r.Context(), d); err != nil {
		s.Logger.Error("delivery_store_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store")
		return
	}

	fields := []zap.Field{
		zap.Int64("id", d.ID),
		zap.String("channel", channel),
		zap.String("sitemap_url", d.Result.SitemapURL),
		zap.String("status", string(d.Result.Status)),
	}
	if d.Result.UnreachableTotal != nil {
		fields = append(fields, zap.Int("unreachable_total", *d.Result.UnreachableTotal))
	}
	s.Logger.Info("delivery_received", fields...)

	writeJSON(w, http.StatusOK, map[string]any{"id": d.ID})
}

func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel != "" && !validChannel(channel) {
		writeError(w, http.StatusBadRequest, "unknown channel")
		return
	}
	ds, err := s.Deliveries.List(r.Context(), channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	ds, err := s.Deliveries.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "latest error")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
