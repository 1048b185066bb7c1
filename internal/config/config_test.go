package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conciliar/internal/config"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "postgres://postgres:@localhost:5432/conciliar?sslmode=disable", cfg.ConnectionString())

	mc, err := cfg.MatchingConfig()
	require.NoError(t, err)

	def := matching.DefaultConfig()
	assert.Equal(t, def.Threshold, mc.Threshold)
	assert.Equal(t, def.WeightAmount, mc.WeightAmount)
	assert.Equal(t, def.WindowDays, mc.WindowDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "70")
	t.Setenv("MATCH_SIMILARITY", "fuzzy")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)

	mc, err := cfg.MatchingConfig()
	require.NoError(t, err)
	assert.Equal(t, 70, mc.Threshold)
}

func TestMatchingConfig_Invalid(t *testing.T) {
	type testCase struct {
		name string
		env  map[string]string
	}

	tests := []testCase{
		{name: "Weights", env: map[string]string{"MATCH_WEIGHT_AMOUNT": "90"}},
		{name: "Similarity", env: map[string]string{"MATCH_SIMILARITY": "soundex"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			require.NoError(t, err)

			_, err = cfg.MatchingConfig()
			assert.ErrorIs(t, err, matching.ErrInvalidConfig)
		})
	}
}
