package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oselz/ai-gateway/internal/core/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, domain.AutoProvider, cfg.Router.DefaultProvider)
	assert.True(t, cfg.Router.Fallback)
	assert.False(t, cfg.Router.CostOptimization)
	assert.False(t, cfg.Router.LoadBalancing)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Store.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ROUTER_DEFAULT_PROVIDER", "openai")
	t.Setenv("ROUTER_FALLBACK", "false")
	t.Setenv("ROUTER_LOAD_BALANCING", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Router.DefaultProvider)
	assert.False(t, cfg.Router.Fallback)
	assert.True(t, cfg.Router.LoadBalancing)
}

func TestChatProviderConfigs_CredentialPresence(t *testing.T) {
	os.Clearenv()
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	configs := cfg.ChatProviderConfigs()
	require.Len(t, configs, 2)
	// catalog declaration order, ollama omitted entirely
	assert.Equal(t, "anthropic", configs[0].ID)
	assert.Equal(t, "openai", configs[1].ID)
}

func TestChatProviderConfigs_NoneConfigured(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.ChatProviderConfigs())
}

func TestImageAndTranscriberConfigs(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	_, ok := cfg.ImageProviderConfig()
	assert.False(t, ok)
	_, ok = cfg.TranscriberConfig()
	assert.False(t, ok)

	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("DEEPGRAM_API_KEY", "dg_test")

	cfg, err = LoadConfig()
	require.NoError(t, err)

	img, ok := cfg.ImageProviderConfig()
	assert.True(t, ok)
	assert.Equal(t, "replicate", img.ID)

	stt, ok := cfg.TranscriberConfig()
	assert.True(t, ok)
	assert.Equal(t, "deepgram", stt.ID)
}
