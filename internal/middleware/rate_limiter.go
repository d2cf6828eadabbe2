package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"orcamentos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// janela counts requests of one client IP within a fixed window.
type janela struct {
	count int
	fim   time.Time
}

// Limitador is a fixed-window per-IP request limiter.
type Limitador struct {
	mu      sync.Mutex
	limite  int
	duracao time.Duration
	ips     map[string]*janela
	agora   func() time.Time
}

func NewLimitador(limite int, duracao time.Duration) *Limitador {
	return &Limitador{
		limite:  limite,
		duracao: duracao,
		ips:     make(map[string]*janela),
		agora:   time.Now,
	}
}

// Permitir counts one request for ip and reports whether it is within the
// limit, plus when the current window ends.
func (l *Limitador) Permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.agora()
	e, ok := l.ips[ip]
	if !ok || now.After(e.fim) {
		e = &janela{fim: now.Add(l.duracao)}
		l.ips[ip] = e
	}
	e.count++
	return e.count <= l.limite, e.fim
}

// Purgar drops expired windows and returns how many were removed.
func (l *Limitador) Purgar() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.agora()
	n := 0
	for ip, e := range l.ips {
		if now.After(e.fim) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *Limitador) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fim := l.Permitir(c.ClientIP())
		if !ok {
			espera := int(time.Until(fim).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(espera))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// PurgarPeriodicamente removes expired entries until ctx is cancelled, so IPs
// that never return do not accumulate.
func PurgarPeriodicamente(ctx context.Context, intervalo time.Duration, limitadores ...*Limitador) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			total := 0
			for _, l := range limitadores {
				total += l.Purgar()
			}
			if total > 0 {
				log.Debug().Int("entries_purged", total).Msg("rate limiter purged")
			}
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(l *Limitador) gin.HandlerFunc {
	return l.Middleware("Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(l *Limitador) gin.HandlerFunc {
	return l.Middleware("Muitas requisições. Tente novamente em instantes.")
}
