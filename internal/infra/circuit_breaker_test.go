package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSidecar = errors.New("sidecar down")

func novoBreaker(t *testing.T) (*CircuitBreaker, *time.Time) {
	t.Helper()
	agora := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute})
	cb.agora = func() time.Time { return agora }
	return cb, &agora
}

func falha() error { return errSidecar }
func sucesso() error { return nil }

func TestCircuitBreaker_AbreAposFalhasConsecutivas(t *testing.T) {
	cb, _ := novoBreaker(t)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(falha), errSidecar)
	}
	assert.Equal(t, CBClosed, cb.State())

	// a success resets the count
	require.NoError(t, cb.Execute(sucesso))
	for i := 0; i < 2; i++ {
		_ = cb.Execute(falha)
	}
	assert.Equal(t, CBClosed, cb.State())

	_ = cb.Execute(falha)
	assert.Equal(t, CBOpen, cb.State())

	chamado := false
	err := cb.Execute(func() error { chamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, chamado)
}

func TestCircuitBreaker_MeioAbertoFechaAposSucessos(t *testing.T) {
	cb, agora := novoBreaker(t)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(falha)
	}
	require.Equal(t, CBOpen, cb.State())

	*agora = agora.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(sucesso))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(sucesso))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SondaComFalhaReabre(t *testing.T) {
	cb, agora := novoBreaker(t)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(falha)
	}
	*agora = agora.Add(2 * time.Minute)

	assert.ErrorIs(t, cb.Execute(falha), errSidecar)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_UmaSondaPorVez(t *testing.T) {
	cb, agora := novoBreaker(t)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(falha)
	}
	*agora = agora.Add(time.Minute)

	var interna error
	err := cb.Execute(func() error {
		interna = cb.Execute(sucesso)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, interna, ErrCircuitOpen)
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(42).String())
}
