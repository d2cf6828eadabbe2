package handler

import (
	"net/http"

	"orcamentos/internal/dto"
	"orcamentos/internal/service"

	"github.com/gin-gonic/gin"
)

type AssistenteHandler struct{ svc service.AssistenteService }

func NewAssistenteHandler(svc service.AssistenteService) *AssistenteHandler {
	return &AssistenteHandler{svc: svc}
}

// Interpretar sends the instruction to the AI sidecar and returns the tagged
// action without applying it.
func (h *AssistenteHandler) Interpretar(c *gin.Context) {
	var req dto.InterpretarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Interpretar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err, "Assistente indisponível")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssistenteHandler) Aplicar(c *gin.Context) {
	var req dto.AcaoAssistente
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aplicar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err, "Erro ao aplicar ação do assistente")
		return
	}
	c.JSON(statusResultado(resp), resp)
}

func (h *AssistenteHandler) Confirmar(c *gin.Context) {
	var req dto.ConfirmarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		responderErro(c, err, "Confirmação inexistente ou expirada")
		return
	}
	c.JSON(statusResultado(resp), resp)
}

func statusResultado(r *dto.AcaoResultado) int {
	switch r.Resultado {
	case dto.ResultadoCriado:
		return http.StatusCreated
	case dto.ResultadoPendente:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}
