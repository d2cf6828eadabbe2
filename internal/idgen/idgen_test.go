package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSequencia_Deterministic(t *testing.T) {
	s := NovaSequencia()
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", s.NovoID().String())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", s.NovoID().String())

	for i := 0; i < 254; i++ {
		s.NovoID()
	}
	assert.Equal(t, "00000000-0000-0000-0000-000000000101", s.NovoID().String())
}

func TestUUID_Unique(t *testing.T) {
	p := UUID()
	a, b := p.NovoID(), p.NovoID()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, uuid.Nil, a)
}
