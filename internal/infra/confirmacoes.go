package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const confirmacaoPrefix = "confirmacao:"

// ErrConfirmacaoAusente is returned when a token is unknown or expired.
var ErrConfirmacaoAusente = errors.New("confirmação inexistente ou expirada")

// ConfirmacoesRedis keeps pending assistant confirmations with a TTL.
type ConfirmacoesRedis struct {
	rdb *redis.Client
}

func NewConfirmacoesRedis(rdb *redis.Client) *ConfirmacoesRedis {
	return &ConfirmacoesRedis{rdb: rdb}
}

func (c *ConfirmacoesRedis) Salvar(ctx context.Context, token string, dados []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, confirmacaoPrefix+token, dados, ttl).Err()
}

// Consumir reads and deletes the token atomically, so a confirmation is
// applied at most once.
func (c *ConfirmacoesRedis) Consumir(ctx context.Context, token string) ([]byte, error) {
	b, err := c.rdb.GetDel(ctx, confirmacaoPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrConfirmacaoAusente
	}
	return b, err
}

// ConfirmacoesMemoria is the in-process store used when Redis is not configured.
type ConfirmacoesMemoria struct {
	mu    sync.Mutex
	itens map[string]confirmacaoMemoria
	agora func() time.Time
}

type confirmacaoMemoria struct {
	dados  []byte
	expira time.Time
}

func NewConfirmacoesMemoria() *ConfirmacoesMemoria {
	return &ConfirmacoesMemoria{itens: make(map[string]confirmacaoMemoria), agora: time.Now}
}

func (c *ConfirmacoesMemoria) Salvar(_ context.Context, token string, dados []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.agora()
	for k, v := range c.itens {
		if now.After(v.expira) {
			delete(c.itens, k)
		}
	}
	c.itens[token] = confirmacaoMemoria{dados: append([]byte(nil), dados...), expira: now.Add(ttl)}
	return nil
}

func (c *ConfirmacoesMemoria) Consumir(_ context.Context, token string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.itens[token]
	delete(c.itens, token)
	if !ok || c.agora().After(v.expira) {
		return nil, ErrConfirmacaoAusente
	}
	return v.dados, nil
}
