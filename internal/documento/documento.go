// Package documento projects a quotation into the printable document model:
// the quotation page followed by one technical sheet per item. Rendering to
// PDF and XLSX lives in infra; this package only decides what is shown.
package documento

import (
	"strconv"
	"strings"
	"time"

	"orcamentos/internal/model"
	"orcamentos/internal/tamanho"

	"github.com/shopspring/decimal"
)

const (
	SemTecido   = "Não especificado"
	SemEstampas = "Nenhuma estampa aplicada"
	SemCor      = "Não especificada"
)

// Emissor is the issuing company shown in the header.
type Emissor struct {
	Nome      string
	Documento string
	Endereco  string
	Telefone  string
	Email     string
}

type Cabecalho struct {
	Emissor        Emissor
	Numero         string
	ClienteNome    string
	ClienteContato string
	DataEmissao    time.Time
	Status         string
}

type LinhaOrcamento struct {
	Produto       string
	Tamanhos      []tamanho.Linha
	Quantidade    int
	PrecoUnitario decimal.Decimal
	Total         decimal.Decimal
}

type EstampaFicha struct {
	Posicao string
	Tecnica string
	Largura string
}

// Ficha is the technical sheet of one item.
type Ficha struct {
	Numero            int
	Produto           string
	ImagemChave       string
	ImagemBase64      string
	Tecido            string
	Cor               string
	CorHex            string
	Estampas          []EstampaFicha
	Grade             []tamanho.Linha
	Quantidade        int
	ObservacaoTecnica string
}

// TemImagem reports whether the sheet carries a reference image.
func (f Ficha) TemImagem() bool { return f.ImagemChave != "" || f.ImagemBase64 != "" }

type Documento struct {
	Cabecalho          Cabecalho
	Linhas             []LinhaOrcamento
	Subtotal           decimal.Decimal
	Frete              *decimal.Decimal
	Total              decimal.Decimal
	Observacoes        string
	CondicoesPagamento string
	PrazoEntrega       string
	Validade           string
	// Tamanhos is every size with a non-zero quantity in any item, in catalog order.
	Tamanhos []string
	Fichas   []Ficha
}

// Total is Σ(quantidade × preço unitário) plus freight when present.
func Total(orc *model.Orcamento) decimal.Decimal {
	t := Subtotal(orc)
	if orc.Frete != nil {
		t = t.Add(*orc.Frete)
	}
	return t
}

func Subtotal(orc *model.Orcamento) decimal.Decimal {
	t := decimal.Zero
	for _, it := range orc.Itens {
		t = t.Add(it.TotalLinha())
	}
	return t
}

// Moeda renders a monetary value with exactly two decimals ("125.00").
func Moeda(d decimal.Decimal) string { return d.StringFixed(2) }

// Reais renders a value for display in Brazilian notation ("R$ 1.234,50").
func Reais(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	inteiro, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

// Montar builds the document. totalFn computes the grand total; nil uses Total.
func Montar(orc *model.Orcamento, emissor Emissor, totalFn func(*model.Orcamento) decimal.Decimal) *Documento {
	if totalFn == nil {
		totalFn = Total
	}
	doc := &Documento{
		Cabecalho: Cabecalho{
			Emissor:     emissor,
			Numero:      orc.Numero,
			DataEmissao: orc.DataEmissao,
			Status:      orc.Status.String(),
		},
		Subtotal:           Subtotal(orc),
		Frete:              orc.Frete,
		Total:              totalFn(orc),
		Observacoes:        orc.Observacoes,
		CondicoesPagamento: orc.CondicoesPagamento,
		PrazoEntrega:       orc.PrazoEntrega,
		Validade:           orc.Validade,
	}
	if orc.Cliente != nil {
		doc.Cabecalho.ClienteNome = orc.Cliente.RazaoSocial
		doc.Cabecalho.ClienteContato = orc.Cliente.Contato
	}

	presentes := make(map[string]bool)
	for i, it := range orc.Itens {
		grade := it.Tamanhos.Ordenadas()
		for _, l := range grade {
			presentes[l.Tamanho] = true
		}
		doc.Linhas = append(doc.Linhas, LinhaOrcamento{
			Produto:       it.ProdutoNome,
			Tamanhos:      grade,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			Total:         it.TotalLinha(),
		})
		doc.Fichas = append(doc.Fichas, montarFicha(i+1, it, grade))
	}

	tams := make([]string, 0, len(presentes))
	for t := range presentes {
		tams = append(tams, t)
	}
	doc.Tamanhos = tamanho.Ordenar(tams)
	return doc
}

func montarFicha(n int, it model.ItemOrcamento, grade []tamanho.Linha) Ficha {
	f := Ficha{
		Numero:            n,
		Produto:           it.ProdutoNome,
		Tecido:            SemTecido,
		Cor:               SemCor,
		CorHex:            CorPadrao,
		Grade:             grade,
		Quantidade:        it.Quantidade,
		ObservacaoTecnica: it.ObservacaoTecnica,
	}
	if it.ImagemChave != nil {
		f.ImagemChave = *it.ImagemChave
	}
	if it.ImagemBase64 != nil {
		f.ImagemBase64 = *it.ImagemBase64
	}
	if it.TecidoNome != nil && strings.TrimSpace(*it.TecidoNome) != "" {
		f.Tecido = *it.TecidoNome
		if it.TecidoComposicao != nil && strings.TrimSpace(*it.TecidoComposicao) != "" {
			f.Tecido += " (" + *it.TecidoComposicao + ")"
		}
	}
	if it.Cor != nil && strings.TrimSpace(*it.Cor) != "" {
		f.Cor = *it.Cor
		f.CorHex = CorHex(*it.Cor)
	}
	for _, e := range it.Estampas {
		f.Estampas = append(f.Estampas, EstampaFicha{Posicao: e.Posicao, Tecnica: e.Tecnica, Largura: e.Largura})
	}
	return f
}

// DescricaoEstampas returns the print lines of a sheet, or the empty marker.
func (f Ficha) DescricaoEstampas() []string {
	if len(f.Estampas) == 0 {
		return []string{SemEstampas}
	}
	out := make([]string, len(f.Estampas))
	for i, e := range f.Estampas {
		partes := []string{}
		for _, p := range []string{e.Posicao, e.Tecnica, e.Largura} {
			if p != "" {
				partes = append(partes, p)
			}
		}
		out[i] = strings.Join(partes, " · ")
	}
	return out
}

// GradeTexto renders "P: 2, M: 5" in catalog order.
func GradeTexto(linhas []tamanho.Linha) string {
	partes := make([]string, len(linhas))
	for i, l := range linhas {
		partes[i] = l.Tamanho + ": " + strconv.Itoa(l.Quantidade)
	}
	return strings.Join(partes, ", ")
}
