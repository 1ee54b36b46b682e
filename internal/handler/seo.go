package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/showcase/internal/service"
)

const robotsTxt = `User-agent: *
Allow: /
Disallow: /api/admin/
Sitemap: %s/sitemap.xml
`

type SEOHandler struct {
	sitemapService *service.SitemapService
	baseURL        string
}

func NewSEOHandler(sitemapService *service.SitemapService, baseURL string) *SEOHandler {
	return &SEOHandler{
		sitemapService: sitemapService,
		baseURL:        baseURL,
	}
}

// Robots serves the robots.txt file
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, robotsTxt, h.baseURL)
}

// Sitemap generates and serves the sitemap.xml dynamically
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap(r.Context())
	if err != nil {
		slog.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(sitemap)
}
