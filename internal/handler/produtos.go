package handler

import (
	"net/http"

	"orcamentos/internal/dto"
	"orcamentos/internal/service"
	"orcamentos/internal/tamanho"

	"github.com/gin-gonic/gin"
)

type ProdutosHandler struct{ svc service.ProdutoService }

func NewProdutosHandler(svc service.ProdutoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc}
}

func (h *ProdutosHandler) Criar(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err, "Erro ao criar produto")
		return
	}
	status := http.StatusCreated
	if resp.Reutilizado {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *ProdutosHandler) Listar(c *gin.Context) {
	var filter dto.ProdutoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err, "Erro ao listar produtos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) ObterPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Produto não encontrado")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar produto")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Desativar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		responderErro(c, err, "Erro ao remover produto")
		return
	}
	c.Status(http.StatusNoContent)
}

// Grade returns the sizes shown in the product's quantity grid.
func (h *ProdutosHandler) Grade(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Grade(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Produto não encontrado")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Tamanhos returns the canonical size catalog.
func Tamanhos(c *gin.Context) {
	bandas := tamanho.PorBanda()
	c.JSON(http.StatusOK, dto.TamanhosResponse{
		Catalogo: tamanho.Catalogo(),
		Letras:   bandas[tamanho.BandLetra],
		Adulto:   bandas[tamanho.BandAdulto],
		Infantil: bandas[tamanho.BandInfantil],
	})
}
