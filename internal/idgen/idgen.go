// Package idgen hands out identifiers for new entities.
package idgen

import (
	"sync"

	"github.com/google/uuid"
)

// Provider returns a fresh identifier on every call.
type Provider interface {
	NovoID() uuid.UUID
}

type uuidProvider struct{}

// UUID returns the production provider (random v4 UUIDs).
func UUID() Provider { return uuidProvider{} }

func (uuidProvider) NovoID() uuid.UUID { return uuid.New() }

// Sequencia yields deterministic UUIDs 00000000-0000-0000-0000-000000000001, ...002, ...
type Sequencia struct {
	mu sync.Mutex
	n  uint64
}

func NovaSequencia() *Sequencia { return &Sequencia{} }

func (s *Sequencia) NovoID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	var id uuid.UUID
	v := s.n
	for i := len(id) - 1; i >= 0 && v > 0; i-- {
		id[i] = byte(v)
		v >>= 8
	}
	return id
}
