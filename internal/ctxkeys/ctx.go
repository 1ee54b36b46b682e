package ctxkeys

import (
	"context"

	"github.com/templui/showcase/internal/config"
	"github.com/templui/showcase/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	AdminKey      contextKey = "admin"
	AuthSourceKey contextKey = "auth_source"
	ConfigKey     contextKey = "config"
	CSRFTokenKey  contextKey = "csrf_token"
	ClientIPKey   contextKey = "client_ip"
)

// Auth sources recorded by the admin middleware.
const (
	AuthSourceBearer = "bearer"
	AuthSourceCookie = "cookie"
)

func Admin(ctx context.Context) *model.Admin {
	admin, _ := ctx.Value(AdminKey).(*model.Admin)
	return admin
}

func WithAdmin(ctx context.Context, admin *model.Admin, source string) context.Context {
	ctx = context.WithValue(ctx, AdminKey, admin)
	return context.WithValue(ctx, AuthSourceKey, source)
}

func AuthSource(ctx context.Context) string {
	source, _ := ctx.Value(AuthSourceKey).(string)
	return source
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}
