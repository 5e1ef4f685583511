package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	assert.Equal(t, 3, cfg.Backoff.Attempts)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://localhost:11434"),
		WithEmbeddingModel("nomic-embed-text"),
		WithAPIToken("sk-test"),
		WithBackoff(5, time.Second),
	)

	assert.Equal(t, "http://localhost:11434", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, "sk-test", cfg.APIToken)
	assert.Equal(t, 5, cfg.Backoff.Attempts)
	assert.Equal(t, time.Second, cfg.Backoff.BaseDelay)
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
			assert.Equal(t, "none", cfg.APIToken)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		assert.ErrorContains(t, cfg.Validate(), "EmbeddingHost")
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.ErrorContains(t, cfg.Validate(), "EmbeddingModel")
	})

	t.Run("no attempts", func(t *testing.T) {
		cfg := NewConfig(WithBackoff(0, time.Second))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidMaxAttempts)
	})
}
