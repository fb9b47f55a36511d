package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "JWT_TTL", "GUEST_ADHOC_PRODUCTS", "SMTP_PORT", "RAZORPAY_KEY_SECRET_FILE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.GuestAdHocProducts)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("GUEST_ADHOC_PRODUCTS", "false")
	t.Setenv("RELAY_BUFFER", "not-a-number")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.GuestAdHocProducts)
	assert.Equal(t, 256, cfg.RelayBuffer)
}

func TestSecretFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	t.Setenv("RAZORPAY_KEY_SECRET", "from-env")
	t.Setenv("RAZORPAY_KEY_SECRET_FILE", path)
	assert.Equal(t, "from-file", Load().PaymentSecret)

	t.Setenv("RAZORPAY_KEY_SECRET_FILE", filepath.Join(t.TempDir(), "missing"))
	cfg := Load()
	assert.Equal(t, "from-env", cfg.PaymentSecret)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "RAZORPAY_KEY_SECRET_FILE")
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/glow", redactDSN("postgres://glow:pw@db:5432/glow"))
	assert.Equal(t, "glowcandles.db", redactDSN("glowcandles.db"))
}
