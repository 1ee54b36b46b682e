package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/showcase/internal/app"
	"github.com/templui/showcase/internal/handler"
	"github.com/templui/showcase/internal/middleware"
)

// catalogRoutes is satisfied by every CatalogHandler instantiation.
type catalogRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	seo := handler.NewSEOHandler(app.SitemapService, app.Cfg.AppURL)
	health := handler.NewHealthHandler(app.DB)
	newsletter := handler.NewNewsletterHandler(app.EmailService)
	quote := handler.NewQuoteHandler(app.QuoteService)
	auth := handler.NewAuthHandler(app.AuthService)
	media := handler.NewMediaHandler(app.MediaService, max(app.Cfg.MediaMaxImageMB, app.Cfg.MediaMaxVideoMB))

	catalogs := map[string]catalogRoutes{
		"products": handler.NewCatalogHandler(app.Products, handler.DecodeForm[handler.ProductForm]),
		"services": handler.NewCatalogHandler(app.Services, handler.DecodeForm[handler.ServiceForm]),
		"projects": handler.NewCatalogHandler(app.Projects, handler.DecodeForm[handler.ProjectForm]),
		"clients":  handler.NewCatalogHandler(app.Clients, handler.DecodeForm[handler.ClientForm]),
	}

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// Content
	for kind, h := range catalogs {
		mux.HandleFunc("GET /api/"+kind, h.List)
		mux.HandleFunc("GET /api/"+kind+"/{slug}", h.Show)
	}

	// Forms (rate limited)
	formLimiter := middleware.RateLimitForms()
	mux.HandleFunc("POST /api/quotes", formLimiter(quote.Submit))
	mux.HandleFunc("POST /api/newsletter", formLimiter(newsletter.Subscribe))

	// ============================================================================
	// ADMIN ROUTES (/api/admin/*)
	// ============================================================================

	// Auth (rate limited)
	mux.HandleFunc("POST /api/admin/login", middleware.RateLimitAuth()(auth.Login))
	mux.HandleFunc("POST /api/admin/logout", auth.Logout)
	mux.HandleFunc("GET /api/admin/me", middleware.RequireAdmin(auth.Me))

	// Media registry
	mux.HandleFunc("POST /api/admin/media", middleware.RequireAdmin(media.Upload))
	mux.HandleFunc("POST /api/admin/media/sign", middleware.RequireAdmin(media.Sign))
	mux.HandleFunc("POST /api/admin/media/register", middleware.RequireAdmin(media.Register))
	mux.HandleFunc("GET /api/admin/media", middleware.RequireAdmin(media.List))
	mux.HandleFunc("GET /api/admin/media/{id}", middleware.RequireAdmin(media.Get))
	mux.HandleFunc("DELETE /api/admin/media/{id}", middleware.RequireAdmin(media.Delete))

	// Entities
	for kind, h := range catalogs {
		mux.HandleFunc("POST /api/admin/"+kind, middleware.RequireAdmin(h.Create))
		mux.HandleFunc("GET /api/admin/"+kind+"/{id}", middleware.RequireAdmin(h.Get))
		mux.HandleFunc("PATCH /api/admin/"+kind+"/{id}", middleware.RequireAdmin(h.Update))
		mux.HandleFunc("DELETE /api/admin/"+kind+"/{id}", middleware.RequireAdmin(h.Delete))
	}

	// Quote requests
	mux.HandleFunc("GET /api/admin/quotes", middleware.RequireAdmin(quote.List))
	mux.HandleFunc("GET /api/admin/quotes/{id}", middleware.RequireAdmin(quote.Get))
	mux.HandleFunc("DELETE /api/admin/quotes/{id}", middleware.RequireAdmin(quote.Delete))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.ClientIP(app.Cfg.TrustedProxies), // Before anything that logs or rate limits by IP
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.AdminAuth(app.AuthService), // Must run before CSRFProtection, which checks cookie-authenticated writes
		middleware.CSRFProtection,
		middleware.Metrics, // Innermost, so the matched route pattern is visible
	)

	return handler
}
