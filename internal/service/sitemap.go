package service

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
)

// publicRoutes defines all static public routes that should be included in the sitemap
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "weekly"},
	{"/products", "0.9", "weekly"},
	{"/services", "0.9", "monthly"},
	{"/projects", "0.8", "weekly"},
	{"/clients", "0.6", "monthly"},
	{"/quote", "0.7", "yearly"},
}

// entityPaths maps each publicly routed kind to its detail page prefix.
var entityPaths = []struct {
	Descriptor *entity.Descriptor
	Path       string
	Priority   string
}{
	{entity.Product, "/products/", "0.8"},
	{entity.Service, "/services/", "0.8"},
	{entity.Project, "/projects/", "0.7"},
}

type SitemapService struct {
	entityRepo repository.EntityRepository
	baseURL    string
}

func NewSitemapService(entityRepo repository.EntityRepository, baseURL string) *SitemapService {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &SitemapService{
		entityRepo: entityRepo,
		baseURL:    baseURL,
	}
}

// GenerateSitemap generates a complete sitemap including all entity pages
func (s *SitemapService) GenerateSitemap(ctx context.Context) ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  s.staticURLs(),
	}

	for _, ep := range entityPaths {
		refs, err := s.entityRepo.Slugs(ctx, ep.Descriptor)
		if err != nil {
			// Log error but don't fail - the rest of the sitemap is still useful
			slog.Warn("failed to list entity slugs for sitemap", "error", err, "kind", ep.Descriptor.Kind)
			continue
		}
		for _, ref := range refs {
			sitemap.URLs = append(sitemap.URLs, model.SitemapURL{
				Loc:        s.baseURL + ep.Path + ref.Slug,
				LastMod:    ref.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "monthly",
				Priority:   ep.Priority,
			})
		}
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return []byte(xml.Header + string(output)), nil
}

func (s *SitemapService) staticURLs() []model.SitemapURL {
	today := time.Now().Format("2006-01-02")
	urls := make([]model.SitemapURL, 0, len(publicRoutes))

	for _, route := range publicRoutes {
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	return urls
}
