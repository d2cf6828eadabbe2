package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrNaoEncontrado is returned when the requested record does not exist.
var ErrNaoEncontrado = errors.New("registro não encontrado")

// ErrIndisponivel is returned when an optional backend (queue, AI sidecar,
// object storage) is not configured or not reachable.
var ErrIndisponivel = errors.New("serviço indisponível")

// ValidacaoError carries field → failed rule for payloads that did not come
// through HTTP binding (assistant actions, path parameters).
type ValidacaoError struct {
	Campos map[string]string
}

func (e *ValidacaoError) Error() string {
	nomes := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		nomes = append(nomes, k)
	}
	sort.Strings(nomes)
	return "dados inválidos: " + strings.Join(nomes, ", ")
}

// naoEncontrado maps gorm.ErrRecordNotFound to ErrNaoEncontrado, keeping
// the original error in the chain.
func naoEncontrado(err error, oque string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w: %w", oque, ErrNaoEncontrado, err)
	}
	return err
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ErrDuplicado is returned when a rename collides with another record's name.
var ErrDuplicado = errors.New("já existe um registro com este nome")
