package handler

import (
	"fmt"
	"net/http"

	"orcamentos/internal/apierror"
	"orcamentos/internal/dto"
	"orcamentos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type OrcamentosHandler struct{ svc service.OrcamentoService }

func NewOrcamentosHandler(svc service.OrcamentoService) *OrcamentosHandler {
	return &OrcamentosHandler{svc: svc}
}

// ── Quotation ────────────────────────────────────────────────────────────────

func (h *OrcamentosHandler) Criar(c *gin.Context) {
	var req dto.CriarOrcamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err, "Erro ao criar orçamento")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrcamentosHandler) Listar(c *gin.Context) {
	var filter dto.OrcamentoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err, "Erro ao listar orçamentos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) ObterPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Orçamento não encontrado")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarOrcamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar orçamento")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		responderErro(c, err, "Erro ao excluir orçamento")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrcamentosHandler) DefinirStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		responderErro(c, err, "Erro ao alterar status")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) DefinirCliente(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.DefinirClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirCliente(c.Request.Context(), id, uuid.MustParse(req.ClienteID))
	if err != nil {
		responderErro(c, err, "Erro ao definir cliente")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) ProximoNumero(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProximoNumeroResponse{Numero: h.svc.ProximoNumero(c.Request.Context())})
}

// ── Items ────────────────────────────────────────────────────────────────────

// AdicionarItem answers 201 when the item was added. An incomplete draft is
// not an error: the response carries alterado=false.
func (h *OrcamentosHandler) AdicionarItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdicionarItem(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err, "Erro ao adicionar item")
		return
	}
	status := http.StatusOK
	if resp.Alterado {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func (h *OrcamentosHandler) AtualizarItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req dto.AtualizarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar item")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) RemoverItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.svc.RemoverItem(c.Request.Context(), id, itemID)
	if err != nil {
		responderErro(c, err, "Erro ao remover item")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) MoverItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.MoverItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.DestinoID == "" && !req.Fim {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"DestinoID": "required_without"}))
		return
	}
	resp, err := h.svc.ReordenarItens(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err, "Erro ao reordenar itens")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrcamentosHandler) DefinirOrdem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.OrdemItensRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirOrdem(c.Request.Context(), id, req.IDs)
	if err != nil {
		responderErro(c, err, "Erro ao reordenar itens")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Documents ────────────────────────────────────────────────────────────────

func (h *OrcamentosHandler) PDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, nome, err := h.svc.GerarPDF(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Erro ao gerar PDF")
		return
	}
	anexo(c, mimePDF, nome, b)
}

func (h *OrcamentosHandler) XLSX(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, nome, err := h.svc.GerarXLSX(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Erro ao gerar planilha")
		return
	}
	anexo(c, mimeXLSX, nome, b)
}

// Enviar queues the email; delivery happens in the worker pool.
func (h *OrcamentosHandler) Enviar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.EnviarOrcamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Enviar(c.Request.Context(), id, req); err != nil {
		responderErro(c, err, "Erro ao enviar orçamento")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"enfileirado": true})
}

func anexo(c *gin.Context, mime, nome string, b []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	c.Data(http.StatusOK, mime, b)
}
