package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/config"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/service"
	"github.com/templui/showcase/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Host           storage.MediaHost
	AuthService    *service.AuthService
	EmailService   *service.EmailService
	MediaService   *service.MediaService
	QuoteService   *service.QuoteService
	SitemapService *service.SitemapService
	Sweeper        *service.Sweeper
	Auditor        *service.Auditor

	Products *service.Catalog[model.Product, *model.Product]
	Services *service.Catalog[model.Service, *model.Service]
	Projects *service.Catalog[model.Project, *model.Project]
	Clients  *service.Catalog[model.Client, *model.Client]
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Storage
	host, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	return Wire(cfg, database, host), nil
}

// Wire builds the services on top of an opened database and media host.
func Wire(cfg *config.Config, database *sqlx.DB, host storage.MediaHost) *App {
	// Repositories
	mediaRepository := repository.NewMediaRepository(database)
	entityRepository := repository.NewEntityRepository(database)
	quoteRepository := repository.NewQuoteRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.ResendAudienceID,
		cfg.QuoteNotifyEmail,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		cfg.AdminEmail,
		cfg.AdminPasswordHash,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.SecureCookies(),
	)
	mediaService := service.NewMediaService(
		database,
		mediaRepository,
		entityRepository,
		host,
		entity.All(),
		cfg.MediaMaxImageMB,
		cfg.MediaMaxVideoMB,
	)
	coordinator := service.NewCoordinator(database, entityRepository, mediaRepository, mediaService)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Host:           host,
		AuthService:    authService,
		EmailService:   emailService,
		MediaService:   mediaService,
		QuoteService:   service.NewQuoteService(quoteRepository, entityRepository, emailService),
		SitemapService: service.NewSitemapService(entityRepository, cfg.AppURL),
		Sweeper:        service.NewSweeper(database, mediaRepository, host, cfg.MediaGracePeriod),
		Auditor:        service.NewAuditor(mediaRepository, host, cfg.MediaGracePeriod),

		Products: service.NewCatalog[model.Product](entity.Product, coordinator, entityRepository, mediaService),
		Services: service.NewCatalog[model.Service](entity.Service, coordinator, entityRepository, mediaService),
		Projects: service.NewCatalog[model.Project](entity.Project, coordinator, entityRepository, mediaService),
		Clients:  service.NewCatalog[model.Client](entity.Client, coordinator, entityRepository, mediaService),
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
