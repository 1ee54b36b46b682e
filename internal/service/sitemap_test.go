package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapIncludesEntityPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Create(ctx, serviceInput("Roof Repair", env.image(t), nil))
	require.NoError(t, err)
	_, err = env.products.Create(ctx, productInput("Heat Pump", env.image(t), env.video(t), env.image(t)))
	require.NoError(t, err)

	out, err := NewSitemapService(env.entityRepo, "https://example.com/").GenerateSitemap(ctx)
	require.NoError(t, err)

	body := string(out)
	assert.Contains(t, body, "<loc>https://example.com/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/services/roof-repair</loc>")
	assert.Contains(t, body, "<loc>https://example.com/products/heat-pump</loc>")
}
