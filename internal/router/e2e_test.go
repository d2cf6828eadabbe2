//go:build integration

package router

// End-to-end test against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"orcamentos/internal/config"
	"orcamentos/internal/dto"
	"orcamentos/internal/infra"
	"orcamentos/internal/model"
	"orcamentos/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type caixaPostal struct {
	mu     sync.Mutex
	envios []string
}

func (c *caixaPostal) EnviarComAnexo(to, _, _, nome string, anexo []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envios = append(c.envios, to+"|"+nome+"|"+string(anexo[:4]))
	return nil
}

func (c *caixaPostal) recebidos() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.envios...)
}

func iniciarPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	pg, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orcamentos_test"),
		tcpostgres.WithUsername("orcamentos"),
		tcpostgres.WithPassword("orcamentos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func iniciarRedis(t *testing.T, ctx context.Context) string {
	t.Helper()
	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Terminate(context.Background()) })

	host, err := rc.Host(ctx)
	require.NoError(t, err)
	port, err := rc.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

// sidecarFalso answers every instruction with the same quotation for a client
// and product that are not registered yet.
func sidecarFalso(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pedido dto.PedidoAssistente
		_ = json.NewDecoder(r.Body).Decode(&pedido)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"acao":"createQuotation","dados":{
			"cliente":"Padaria Nova","contato":"Sr. Luís",
			"itens":[{"produto":"Avental","preco_unitario":"35.00","tamanhos":{"M":4,"G":2},"cor":"Branco"}]
		}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestE2E_AssistenteConfirmacaoEEnvio(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        iniciarPostgres(t, ctx),
		RedisURL:           iniciarRedis(t, ctx),
		WorkerPoolSize:     1,
		NumeroSemente:      "0140",
		ConfirmacaoTTL:     time.Minute,
		ProdutoCacheTTL:    time.Minute,
		ImagemMaxBytes:     1 << 20,
		EnvioMaxTentativas: 2,
		EmpresaNome:        "Uniformes E2E",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	ext := Externos{
		Despacho:   worker.NewDispatcher(rdb),
		Assistente: infra.NewAssistenteClient(sidecarFalso(t).URL, 5*time.Second, cb),
	}
	svcs := NovosServicos(cfg, db, rdb, ext)

	caixa := &caixaPostal{}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processador{
		worker.JobEnvioOrcamento: worker.NewEnvioWorker(svcs.Orcamentos, caixa, cfg.EnvioMaxTentativas),
	})

	_, err = svcs.Auth.CriarUsuario(ctx, dto.CriarUsuarioRequest{
		Username: "admin", Nome: "Admin E2E", Password: "senha-e2e-123", Rol: model.RolAdministrador,
	})
	require.NoError(t, err)

	a := &api{t: t, r: New(ctx, cfg, db, rdb, cb, svcs)}

	w := a.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "senha-e2e-123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[dto.LoginResponse](t, w)
	a.token = login.AccessToken

	// refresh token works on /refresh only
	w = a.do(http.MethodPost, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	// 1. Interpret the instruction
	w = a.do(http.MethodPost, "/v1/assistente/interpretar", dto.InterpretarRequest{Instrucao: "6 aventais brancos para a Padaria Nova"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	acao := decode[dto.AcaoAssistente](t, w)
	assert.Equal(t, dto.AcaoCriarOrcamento, acao.Acao)

	// 2. Apply: client and product are missing, so a confirmation is pending
	w = a.do(http.MethodPost, "/v1/assistente/acoes", acao)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	pendente := decode[dto.AcaoResultado](t, w)
	require.NotNil(t, pendente.Confirmacao)
	assert.Equal(t, []string{"Padaria Nova"}, pendente.Confirmacao.ClientesAusentes)
	assert.Equal(t, []string{"Avental"}, pendente.Confirmacao.ProdutosAusentes)

	// 3. Confirm: records and quotation are created
	w = a.do(http.MethodPost, "/v1/assistente/confirmacoes/"+pendente.Confirmacao.Token, map[string]bool{"confirmar": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	criado := decode[dto.AcaoResultado](t, w)
	require.NotNil(t, criado.Orcamento)
	orc := criado.Orcamento
	assert.Equal(t, "0140 - Avental - Padaria Nova - Sr. Luís", orc.Numero)
	assert.Equal(t, "210.00", orc.Total)

	// the token is single use
	w = a.do(http.MethodPost, "/v1/assistente/confirmacoes/"+pendente.Confirmacao.Token, map[string]bool{"confirmar": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 4. Second item, then move the first to the end
	w = a.do(http.MethodPost, "/v1/orcamentos/"+orc.ID+"/itens", map[string]interface{}{
		"produto_id":     orc.Itens[0].ProdutoID,
		"preco_unitario": "40.00",
		"quantidade":     3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	segundo := decode[dto.ItemResultado](t, w).ItemID

	w = a.do(http.MethodPost, "/v1/orcamentos/"+orc.ID+"/itens/mover", dto.MoverItemRequest{OrigemID: orc.Itens[0].ID, Fim: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/orcamentos/"+orc.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lido := decode[dto.OrcamentoResponse](t, w)
	require.Len(t, lido.Itens, 2)
	assert.Equal(t, segundo, lido.Itens[0].ID)
	assert.Equal(t, orc.Itens[0].ID, lido.Itens[1].ID)
	assert.Equal(t, "330.00", lido.Total)

	// 5. Email delivery through the Redis queue
	w = a.do(http.MethodPost, "/v1/orcamentos/"+orc.ID+"/enviar", dto.EnviarOrcamentoRequest{Email: "compras@padarianova.com.br"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Eventually(t, func() bool { return len(caixa.recebidos()) == 1 }, 20*time.Second, 200*time.Millisecond)
	assert.Equal(t, "compras@padarianova.com.br|orcamento-0140.pdf|%PDF", caixa.recebidos()[0])

	n, err := worker.DLQLength(ctx, rdb, worker.QueueEnvio)
	require.NoError(t, err)
	assert.Zero(t, n)
}
