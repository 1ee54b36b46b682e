package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Proxies whose X-Forwarded-For and X-Real-IP headers are believed.
	// Empty means every request is keyed on its socket peer.
	TrustedProxies []netip.Prefix

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret         string
	JWTExpiry         time.Duration
	AdminEmail        string
	AdminPasswordHash string // bcrypt hash, generate with: htpasswd -bnBC 10 "" <password>

	// Email
	EmailFrom        string
	ResendAPIKey     string
	ResendAudienceID string
	QuoteNotifyEmail string // Where new quote requests are forwarded

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PublicURL           string        // Optional: CDN or public bucket URL used in media URLs
	S3PresignUploadExpiry time.Duration // Expiry for signed direct uploads (large videos)

	// Media lifecycle
	MediaGracePeriod time.Duration // Minimum age of a pending upload before the sweeper may reclaim it
	MediaMaxImageMB  int
	MediaMaxVideoMB  int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Showcase"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"),
		Port:    envString("PORT", "8090"),

		TrustedProxies: envPrefixes("TRUSTED_PROXIES"), // e.g. "10.0.0.0/8, 127.0.0.1"

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/showcase.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret:         envRequired("JWT_SECRET"),
		JWTExpiry:         envDuration("JWT_EXPIRY", 24*time.Hour),
		AdminEmail:        envString("ADMIN_EMAIL", "admin@example.com"),
		AdminPasswordHash: envString("ADMIN_PASSWORD_HASH", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:        envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:     envString("RESEND_API_KEY", ""),
		ResendAudienceID: envString("RESEND_AUDIENCE_ID", ""),
		QuoteNotifyEmail: envString("QUOTE_NOTIFY_EMAIL", "sales@example.com"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:              envRequired("S3_REGION"),
		S3Bucket:              envRequired("S3_BUCKET"),
		S3AccessKey:           envRequired("S3_ACCESS_KEY"),
		S3SecretKey:           envRequired("S3_SECRET_KEY"),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PublicURL:           envString("S3_PUBLIC_URL", ""),
		S3PresignUploadExpiry: envDuration("S3_PRESIGN_UPLOAD_EXPIRY", 15*time.Minute),

		// Media lifecycle
		MediaGracePeriod: envDuration("MEDIA_GRACE_PERIOD", 24*time.Hour),
		MediaMaxImageMB:  envInt("MEDIA_MAX_IMAGE_MB", 10),
		MediaMaxVideoMB:  envInt("MEDIA_MAX_VIDEO_MB", 200),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.AdminPasswordHash == "" {
		slog.Error("production deployment requires ADMIN_PASSWORD_HASH")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envPrefixes reads a comma-separated list of IPs and CIDRs. Invalid entries
// are skipped so a typo never widens trust.
func envPrefixes(key string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(envString(key, ""), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				slog.Warn("config invalid CIDR, skipping", "key", key, "value", entry)
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			slog.Warn("config invalid IP, skipping", "key", key, "value", entry)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether auth cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return envBool("SECURE_COOKIES", c.IsProduction())
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		EmailFrom: c.EmailFrom,

		S3Endpoint:  c.S3Endpoint,
		S3PublicURL: c.S3PublicURL,

		MediaGracePeriod: c.MediaGracePeriod,
		MediaMaxImageMB:  c.MediaMaxImageMB,
		MediaMaxVideoMB:  c.MediaMaxVideoMB,
	}
}
