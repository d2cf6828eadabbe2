package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orcamentos/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SementeNumero is used when no previous quotation number can be parsed.
const SementeNumero = "0140"

const separadorNumero = " - "

// NumeracaoService hands out quotation numbers. It is not atomic: two callers
// racing on the same latest number receive the same sequence.
type NumeracaoService interface {
	// ProximoNumero never fails; read errors fall back to the seed.
	ProximoNumero(ctx context.Context) string
	// Reconstruir rebuilds a number for new product/client segments, keeping
	// the sequence prefix of atual when it has one.
	Reconstruir(ctx context.Context, atual, produto, cliente, contato string) string
}

type numeracaoService struct {
	repo    repository.OrcamentoRepository
	semente string
}

func NewNumeracaoService(repo repository.OrcamentoRepository, semente string) NumeracaoService {
	if _, ok := parseSequencia(semente); !ok {
		semente = SementeNumero
	}
	return &numeracaoService{repo: repo, semente: semente}
}

func (s *numeracaoService) ProximoNumero(ctx context.Context) string {
	ultimo, err := s.repo.UltimoNumero(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Msg("numeracao: falha ao ler último número, usando semente")
		}
		return s.semente
	}
	n, ok := parseSequencia(ultimo)
	if !ok {
		log.Warn().Str("numero", ultimo).Msg("numeracao: último número sem sequência, usando semente")
		return s.semente
	}
	return fmt.Sprintf("%04d", n+1)
}

func (s *numeracaoService) Reconstruir(ctx context.Context, atual, produto, cliente, contato string) string {
	seq := prefixo(atual)
	if _, ok := parseSequencia(seq); !ok {
		seq = s.ProximoNumero(ctx)
	}
	return FormatarNumero(seq, produto, cliente, contato)
}

// FormatarNumero joins the non-empty segments as "NNNN - produto - cliente - contato".
func FormatarNumero(seq, produto, cliente, contato string) string {
	partes := []string{strings.TrimSpace(seq)}
	for _, p := range []string{produto, cliente, contato} {
		if p = strings.TrimSpace(p); p != "" {
			partes = append(partes, p)
		}
	}
	return strings.Join(partes, separadorNumero)
}

func prefixo(numero string) string {
	if i := strings.Index(numero, separadorNumero); i >= 0 {
		return strings.TrimSpace(numero[:i])
	}
	return strings.TrimSpace(numero)
}

func parseSequencia(numero string) (int, bool) {
	n, err := strconv.Atoi(prefixo(numero))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
