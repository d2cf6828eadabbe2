package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segredo = "segredo-de-teste"

func init() { gin.SetMode(gin.TestMode) }

func assinar(t *testing.T, rol, tipo string, exp time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "u-1",
		"username": "ana",
		"rol":      rol,
		"tipo":     tipo,
		"exp":      time.Now().Add(exp).Unix(),
	})
	s, err := tok.SignedString([]byte(segredo))
	require.NoError(t, err)
	return s
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/v1/x", JWTAuth(segredo), RequireRole("administrador"), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})

	cases := []struct {
		nome   string
		header string
		status int
	}{
		{"sem token", "", http.StatusUnauthorized},
		{"esquema errado", "Basic abc", http.StatusUnauthorized},
		{"lixo", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"expirado", "Bearer " + assinar(t, "administrador", TokenAcesso, -time.Minute), http.StatusUnauthorized},
		{"refresh não autentica", "Bearer " + assinar(t, "administrador", TokenRenovacao, time.Hour), http.StatusUnauthorized},
		{"papel insuficiente", "Bearer " + assinar(t, "vendedor", TokenAcesso, time.Hour), http.StatusForbidden},
		{"ok", "Bearer " + assinar(t, "administrador", TokenAcesso, time.Hour), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			w := get(r, "/v1/x", map[string]string{"Authorization": tc.header})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestParseToken_AssinaturaErrada(t *testing.T) {
	tok := assinar(t, "vendedor", TokenAcesso, time.Hour)
	_, err := ParseToken(tok, "outro-segredo")
	assert.Error(t, err)

	claims, err := ParseToken(tok, segredo)
	require.NoError(t, err)
	assert.Equal(t, "vendedor", claims.Rol)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = get(r, "/", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}

func TestLimitador(t *testing.T) {
	agora := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	l := NewLimitador(2, time.Minute)
	l.agora = func() time.Time { return agora }

	ok, _ := l.Permitir("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Permitir("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Permitir("10.0.0.1")
	assert.False(t, ok)
	ok, _ = l.Permitir("10.0.0.2")
	assert.True(t, ok)

	agora = agora.Add(61 * time.Second)
	assert.Equal(t, 2, l.Purgar())
	ok, _ = l.Permitir("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_Responde429(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiter(NewLimitador(1, time.Minute)), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/", nil).Code)
	w := get(r, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://painel.exemplo.com.br", ""))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", map[string]string{"Origin": "https://painel.exemplo.com.br"})
	assert.Equal(t, "https://painel.exemplo.com.br", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/", map[string]string{"Origin": "https://outro.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	aberto := gin.New()
	aberto.Use(CORS())
	aberto.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	aberto.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })
	w := get(r, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
