package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizbank-api/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		JWT:      config.JWTConfig{Secret: "bootstrap-secret", ExpirationHrs: 1},
		Admin:    config.AdminConfig{Username: "root", Password: "password1"},
	}
}

func TestOpenRepositories_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()

	repos, err := OpenRepositories(ctx, cfg)
	require.NoError(t, err)
	defer repos.Close()

	assert.Nil(t, repos.Cache)
	assert.Nil(t, repos.Redis)

	svcs, err := NewServices(cfg, repos)
	require.NoError(t, err)

	require.NoError(t, EnsureAdmin(ctx, cfg.Admin, svcs.User))
	require.NoError(t, EnsureAdmin(ctx, cfg.Admin, svcs.User))

	u, err := svcs.User.Authenticate(ctx, "root", "password1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	overview, err := svcs.Stats.Overview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, overview.TotalUsers)
}

func TestOpenRepositories_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Driver = "sqlite"

	_, err := OpenRepositories(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewServices_RequiresSecret(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWT.Secret = ""

	repos, err := OpenRepositories(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewServices(cfg, repos)
	assert.Error(t, err)
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	assert.NoError(t, EnsureAdmin(context.Background(), config.AdminConfig{}, nil))
}
