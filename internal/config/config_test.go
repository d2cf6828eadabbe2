package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "0140", cfg.NumeroSemente)
	assert.Equal(t, 15*time.Minute, cfg.ConfirmacaoTTL)
	assert.Equal(t, "orcamentos-imagens", cfg.MinioBucket)
	assert.Equal(t, 1000, cfg.RateLimit)
	assert.Empty(t, cfg.CORSOrigens)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NUMERO_SEMENTE", "0200")
	t.Setenv("CONFIRMACAO_TTL", "5m")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("EMPRESA_EMAIL", "vendas@exemplo.com.br")
	t.Setenv("CORS_ORIGENS", "https://painel.exemplo.com.br")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0200", cfg.NumeroSemente)
	assert.Equal(t, 5*time.Minute, cfg.ConfirmacaoTTL)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, "vendas@exemplo.com.br", cfg.EmpresaEmail)
	assert.Equal(t, "https://painel.exemplo.com.br", cfg.CORSOrigens)
}
