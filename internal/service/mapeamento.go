package service

import (
	"orcamentos/internal/documento"
	"orcamentos/internal/dto"
	"orcamentos/internal/model"

	"github.com/google/uuid"
)

func clienteFromRequest(req dto.CriarClienteRequest) *model.Cliente {
	return &model.Cliente{
		RazaoSocial: req.RazaoSocial,
		Documento:   req.Documento,
		Endereco:    req.Endereco,
		Telefone:    req.Telefone,
		Email:       req.Email,
		Contato:     req.Contato,
		Ativo:       true,
	}
}

func produtoFromRequest(req dto.CriarProdutoRequest) *model.Produto {
	return &model.Produto{
		Nome:      req.Nome,
		PrecoBase: req.PrecoBase,
		Cores:     req.Cores,
		Tamanhos:  req.Tamanhos,
		Ativo:     true,
		Tecidos:   tecidosFromRequest(req.Tecidos),
	}
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:          c.ID.String(),
		RazaoSocial: c.RazaoSocial,
		Documento:   c.Documento,
		Endereco:    c.Endereco,
		Telefone:    c.Telefone,
		Email:       c.Email,
		Contato:     c.Contato,
		Ativo:       c.Ativo,
	}
}

func produtoToResponse(p *model.Produto) dto.ProdutoResponse {
	resp := dto.ProdutoResponse{
		ID:        p.ID.String(),
		Nome:      p.Nome,
		PrecoBase: p.PrecoBase,
		Tecidos:   make([]dto.TecidoResponse, len(p.Tecidos)),
		Cores:     p.Cores,
		Tamanhos:  p.Tamanhos,
		Ativo:     p.Ativo,
	}
	for i, t := range p.Tecidos {
		resp.Tecidos[i] = dto.TecidoResponse{Nome: t.Nome, Composicao: t.Composicao}
	}
	if resp.Cores == nil {
		resp.Cores = []string{}
	}
	if resp.Tamanhos == nil {
		resp.Tamanhos = []string{}
	}
	return resp
}

func itemToResponse(it *model.ItemOrcamento) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:                  it.ID.String(),
		ProdutoID:           it.ProdutoID.String(),
		ProdutoNome:         it.ProdutoNome,
		Posicao:             it.Posicao,
		TecidoNome:          it.TecidoNome,
		TecidoComposicao:    it.TecidoComposicao,
		Cor:                 it.Cor,
		Tamanhos:            it.Tamanhos.Ordenadas(),
		Quantidade:          it.Quantidade,
		PrecoUnitario:       it.PrecoUnitario,
		TotalLinha:          it.TotalLinha(),
		ImagemChave:         it.ImagemChave,
		TemImagem:           it.ImagemChave != nil || it.ImagemBase64 != nil,
		ObservacaoComercial: it.ObservacaoComercial,
		ObservacaoTecnica:   it.ObservacaoTecnica,
		Estampas:            make([]dto.EstampaResponse, len(it.Estampas)),
	}
	for i, e := range it.Estampas {
		resp.Estampas[i] = dto.EstampaResponse{Posicao: e.Posicao, Tecnica: e.Tecnica, Largura: e.Largura}
	}
	return resp
}

func orcamentoToResponse(o *model.Orcamento) *dto.OrcamentoResponse {
	resp := &dto.OrcamentoResponse{
		ID:                 o.ID.String(),
		Numero:             o.Numero,
		DataEmissao:        o.DataEmissao,
		Itens:              make([]dto.ItemResponse, len(o.Itens)),
		Observacoes:        o.Observacoes,
		CondicoesPagamento: o.CondicoesPagamento,
		PrazoEntrega:       o.PrazoEntrega,
		Validade:           o.Validade,
		Frete:              o.Frete,
		Status:             o.Status,
		StatusRotulo:       o.Status.String(),
		Subtotal:           documento.Moeda(documento.Subtotal(o)),
		Total:              documento.Moeda(documento.Total(o)),
		CreatedAt:          o.CreatedAt,
	}
	if o.ClienteID != nil {
		id := o.ClienteID.String()
		resp.ClienteID = &id
	}
	if o.Cliente != nil {
		c := clienteToResponse(o.Cliente)
		resp.Cliente = &c
	}
	for i := range o.Itens {
		resp.Itens[i] = itemToResponse(&o.Itens[i])
	}
	return resp
}

func estampasFromRequest(reqs []dto.EstampaRequest) []model.Estampa {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]model.Estampa, len(reqs))
	for i, r := range reqs {
		out[i] = model.Estampa{Posicao: r.Posicao, Tecnica: r.Tecnica, Largura: r.Largura, Ordem: i}
	}
	return out
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, &ValidacaoError{Campos: map[string]string{"ids": "uuid"}}
		}
		out[i] = id
	}
	return out, nil
}
