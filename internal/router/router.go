package router

import (
	"context"
	"strings"
	"time"

	"orcamentos/internal/config"
	_ "orcamentos/internal/docs"
	"orcamentos/internal/documento"
	"orcamentos/internal/handler"
	"orcamentos/internal/idgen"
	"orcamentos/internal/infra"
	"orcamentos/internal/middleware"
	"orcamentos/internal/model"
	"orcamentos/internal/repository"
	"orcamentos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Externos are the optional backends built by the composition root.
// Any field may be nil; the dependent features then report 503.
type Externos struct {
	Imagens    service.ImagemStore
	Despacho   service.Despachante
	Assistente *infra.AssistenteClient
}

// Servicos groups the services shared by the HTTP layer and the worker pool.
type Servicos struct {
	Auth       service.AuthService
	Clientes   service.ClienteService
	Produtos   service.ProdutoService
	Orcamentos service.OrcamentoService
	Assistente service.AssistenteService
}

// NovosServicos wires the service graph.
// Dependency graph: Service ← Repository ← DB/Redis
func NovosServicos(cfg *config.Config, db *gorm.DB, rdb *redis.Client, ext Externos) *Servicos {
	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	orcamentoRepo := repository.NewOrcamentoRepository(db)

	// ── Infrastructure ───────────────────────────────────────────────────────
	var confirmacoes service.ConfirmacaoStore = infra.NewConfirmacoesMemoria()
	if rdb != nil {
		confirmacoes = infra.NewConfirmacoesRedis(rdb)
	}
	var ia service.Interpretador
	if ext.Assistente != nil {
		ia = ext.Assistente
	}
	emissor := documento.Emissor{
		Nome:      cfg.EmpresaNome,
		Documento: cfg.EmpresaDocumento,
		Endereco:  cfg.EmpresaEndereco,
		Telefone:  cfg.EmpresaTelefone,
		Email:     cfg.EmpresaEmail,
	}
	ids := idgen.UUID()

	// ── Services ─────────────────────────────────────────────────────────────
	s := &Servicos{
		Auth:     service.NewAuthService(usuarioRepo, cfg),
		Clientes: service.NewClienteService(clienteRepo),
		Produtos: service.NewProdutoService(produtoRepo, rdb, cfg.ProdutoCacheTTL),
	}
	numeracao := service.NewNumeracaoService(orcamentoRepo, cfg.NumeroSemente)
	s.Orcamentos = service.NewOrcamentoService(
		orcamentoRepo, clienteRepo, s.Produtos, numeracao, ids,
		ext.Imagens, ext.Despacho, emissor, cfg.ImagemMaxBytes,
	)
	s.Assistente = service.NewAssistenteService(
		ia, s.Clientes, s.Produtos, s.Orcamentos,
		clienteRepo, produtoRepo, confirmacoes, ids, cfg.ConfirmacaoTTL,
	)
	return s
}

// New returns a configured Gin engine. ctx bounds background housekeeping
// (rate limiter purge).
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, assistenteCB *infra.CircuitBreaker, svcs *Servicos) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimit := cfg.RateLimit
	if apiLimit <= 0 {
		apiLimit = 1000
	}
	apiLimiter := middleware.NewLimitador(apiLimit, time.Minute)
	loginLimiter := middleware.NewLimitador(20, time.Minute)
	go middleware.PurgarPeriodicamente(ctx, 5*time.Minute, apiLimiter, loginLimiter)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(strings.Split(cfg.CORSOrigens, ",")...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(apiLimiter))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	usuariosH := handler.NewUsuariosHandler(svcs.Auth)
	clientesH := handler.NewClientesHandler(svcs.Clientes)
	produtosH := handler.NewProdutosHandler(svcs.Produtos)
	orcamentosH := handler.NewOrcamentosHandler(svcs.Orcamentos)
	assistenteH := handler.NewAssistenteHandler(svcs.Assistente)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, assistenteCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes: every staff role works on the catalog and quotations;
	// deletions and user management are administrador only.
	todos := middleware.RequireRole(model.RolVendedor, model.RolAdministrador)
	admin := middleware.RequireRole(model.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), todos)
	{
		v1.GET("/tamanhos", handler.Tamanhos)

		clientes := v1.Group("/clientes")
		{
			clientes.POST("", clientesH.Criar)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.ObterPorID)
			clientes.PUT("/:id", clientesH.Atualizar)
			clientes.DELETE("/:id", admin, clientesH.Desativar)
		}

		produtos := v1.Group("/produtos")
		{
			produtos.POST("", produtosH.Criar)
			produtos.GET("", produtosH.Listar)
			produtos.GET("/:id", produtosH.ObterPorID)
			produtos.GET("/:id/grade", produtosH.Grade)
			produtos.PUT("/:id", produtosH.Atualizar)
			produtos.DELETE("/:id", admin, produtosH.Desativar)
		}

		orc := v1.Group("/orcamentos")
		{
			orc.POST("", orcamentosH.Criar)
			orc.GET("", orcamentosH.Listar)
			orc.GET("/proximo-numero", orcamentosH.ProximoNumero)
			orc.GET("/:id", orcamentosH.ObterPorID)
			orc.PUT("/:id", orcamentosH.Atualizar)
			orc.DELETE("/:id", admin, orcamentosH.Excluir)
			orc.PATCH("/:id/status", orcamentosH.DefinirStatus)
			orc.PUT("/:id/cliente", orcamentosH.DefinirCliente)

			orc.POST("/:id/itens", orcamentosH.AdicionarItem)
			orc.POST("/:id/itens/mover", orcamentosH.MoverItem)
			orc.PUT("/:id/itens/ordem", orcamentosH.DefinirOrdem)
			orc.PATCH("/:id/itens/:itemId", orcamentosH.AtualizarItem)
			orc.DELETE("/:id/itens/:itemId", orcamentosH.RemoverItem)

			orc.GET("/:id/pdf", orcamentosH.PDF)
			orc.GET("/:id/xlsx", orcamentosH.XLSX)
			orc.POST("/:id/enviar", orcamentosH.Enviar)
		}

		assist := v1.Group("/assistente")
		{
			assist.POST("/interpretar", assistenteH.Interpretar)
			assist.POST("/acoes", assistenteH.Aplicar)
			assist.POST("/confirmacoes/:token", assistenteH.Confirmar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	}

	return r
}
