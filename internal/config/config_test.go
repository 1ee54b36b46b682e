package config

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvPrefixes(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 127.0.0.1,::ffff:192.0.2.4, not-an-ip, 2001:db8::/32, 10.1.2.3/99 ")

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("192.0.2.4/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, envPrefixes("TRUSTED_PROXIES"))

	t.Setenv("TRUSTED_PROXIES", "")
	assert.Empty(t, envPrefixes("TRUSTED_PROXIES"))
}
