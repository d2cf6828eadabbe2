package reordenar

import (
	"orcamentos/internal/model"

	"github.com/google/uuid"
)

// ChaveItem identifies a quotation row by its item id.
func ChaveItem(i model.ItemOrcamento) uuid.UUID { return i.ID }

// NovaTabelaItens is the quotation item table container.
func NovaTabelaItens(aoReordenar func([]model.ItemOrcamento)) *Controller[model.ItemOrcamento, uuid.UUID] {
	return Novo(ChaveItem, aoReordenar)
}
