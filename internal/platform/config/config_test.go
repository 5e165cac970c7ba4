package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONTRIBUTION_RATE", "")
	t.Setenv("PAYROLL_WORKERS", "")
	cfg := Load()

	assert.True(t, cfg.ContributionRate.Equal(decimal.RequireFromString("0.09625")))
	assert.True(t, cfg.BonusContributionRate.Equal(decimal.RequireFromString("0.09")))
	assert.True(t, cfg.FallbackMinimumWage.Equal(decimal.NewFromInt(2798309)))
	assert.Equal(t, 4, cfg.PayrollWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONTRIBUTION_RATE", "0.1")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PAYROLL_WORKERS", "not-a-number")
	cfg := Load()

	assert.True(t, cfg.ContributionRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.PayrollWorkers)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.DatabaseURL = ""
	require.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/rrhh"
	require.NoError(t, cfg.Validate())

	cfg.ContributionRate = decimal.NewFromInt(2)
	require.Error(t, cfg.Validate())

	cfg.ContributionRate = decimal.RequireFromString("0.09625")
	for _, rate := range []*decimal.Decimal{&cfg.ContributionRate, &cfg.BonusContributionRate, &cfg.SeveranceContributionRate} {
		saved := *rate
		*rate = decimal.Zero
		require.ErrorContains(t, cfg.Validate(), "above 0")
		*rate = saved
	}
	require.NoError(t, cfg.Validate())

	cfg.Environment = "production"
	cfg.JWTSecret = ""
	require.Error(t, cfg.Validate())
}
