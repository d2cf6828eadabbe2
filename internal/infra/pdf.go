package infra

// pdf.go: quotation PDF using go-pdf/fpdf.
// Page 1 carries the quotation (header, item table, totals, terms); the table
// continues on new pages when needed. Each item then gets a technical sheet
// starting on its own page.

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"orcamentos/internal/documento"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargem     = 10.0
	pdfLinha      = 6.0
	pdfImagemMax  = 80.0
	pdfAmostraCor = 8.0
)

// CarregadorImagem returns the bytes of a sheet's reference image, if any.
type CarregadorImagem func(documento.Ficha) ([]byte, bool)

type renderizador struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	contentW float64
	pageH    float64
}

// GerarOrcamentoPDF renders doc as an A4 portrait PDF into w. imagens may be nil.
func GerarOrcamentoPDF(doc *documento.Documento, imagens CarregadorImagem, w io.Writer) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		SizeStr:        "A4",
	})
	pdf.SetMargins(pdfMargem, pdfMargem, pdfMargem)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Orçamento "+doc.Cabecalho.Numero, true)

	pageW, pageH := pdf.GetPageSize()
	r := &renderizador{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		contentW: pageW - 2*pdfMargem,
		pageH:    pageH,
	}

	pdf.AddPage()
	r.cabecalho(doc)
	r.tabelaItens(doc)
	r.totais(doc)
	r.condicoes(doc)

	for _, f := range doc.Fichas {
		pdf.AddPage()
		r.ficha(f, imagens)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func (r *renderizador) texto(w, h float64, s, border string, ln int, align string) {
	r.pdf.CellFormat(w, h, r.tr(s), border, ln, align, false, 0, "")
}

// ── Quotation page ───────────────────────────────────────────────────────────

func (r *renderizador) cabecalho(doc *documento.Documento) {
	c := doc.Cabecalho
	r.pdf.SetFont("Helvetica", "B", 14)
	r.texto(r.contentW, 8, c.Emissor.Nome, "", 1, "L")

	r.pdf.SetFont("Helvetica", "", 8)
	for _, l := range []string{c.Emissor.Documento, c.Emissor.Endereco, juntar(" · ", c.Emissor.Telefone, c.Emissor.Email)} {
		if l != "" {
			r.texto(r.contentW, 4, l, "", 1, "L")
		}
	}
	r.pdf.Ln(3)
	r.linhaHorizontal()

	r.pdf.SetFont("Helvetica", "B", 12)
	r.texto(r.contentW, 8, "ORÇAMENTO Nº "+c.Numero, "", 1, "L")
	r.pdf.SetFont("Helvetica", "", 9)
	cliente := c.ClienteNome
	if c.ClienteContato != "" {
		cliente = juntar(" · A/C ", cliente, c.ClienteContato)
	}
	if cliente != "" {
		r.texto(r.contentW, 5, "Cliente: "+cliente, "", 1, "L")
	}
	r.texto(r.contentW/2, 5, "Data: "+c.DataEmissao.Format("02/01/2006"), "", 0, "L")
	r.texto(r.contentW/2, 5, "Situação: "+c.Status, "", 1, "R")
	r.pdf.Ln(3)
}

func (r *renderizador) colunas() []float64 {
	w := r.contentW
	return []float64{w * 0.32, w * 0.30, w * 0.08, w * 0.14, w * 0.16}
}

func (r *renderizador) cabecalhoTabela() {
	cols := r.colunas()
	r.pdf.SetFont("Helvetica", "B", 9)
	r.pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Produto", "Tamanhos", "Qtd", "Unitário", "Total"} {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		r.pdf.CellFormat(cols[i], pdfLinha, r.tr(h), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetFont("Helvetica", "", 9)
}

func (r *renderizador) tabelaItens(doc *documento.Documento) {
	cols := r.colunas()
	r.cabecalhoTabela()
	_, _, _, bottom := r.pdf.GetMargins()

	for _, l := range doc.Linhas {
		celulas := []string{
			l.Produto,
			documento.GradeTexto(l.Tamanhos),
			strconv.Itoa(l.Quantidade),
			documento.Reais(l.PrecoUnitario),
			documento.Reais(l.Total),
		}
		linhas := 1
		for i, s := range celulas[:2] {
			if n := len(r.pdf.SplitText(r.tr(s), cols[i]-2)); n > linhas {
				linhas = n
			}
		}
		h := float64(linhas) * 5
		if r.pdf.GetY()+h > r.pageH-bottom-15 {
			r.pdf.AddPage()
			r.cabecalhoTabela()
		}

		x, y := r.pdf.GetXY()
		for i, s := range celulas {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			r.pdf.Rect(x, y, cols[i], h, "D")
			r.pdf.SetXY(x, y)
			if i < 2 {
				r.pdf.MultiCell(cols[i], 5, r.tr(s), "", align, false)
			} else {
				r.pdf.CellFormat(cols[i], h, r.tr(s), "", 0, align, false, 0, "")
			}
			x += cols[i]
		}
		r.pdf.SetXY(pdfMargem, y+h)
	}
	r.pdf.Ln(2)
}

func (r *renderizador) totais(doc *documento.Documento) {
	rotulo := r.contentW * 0.80
	valor := r.contentW - rotulo
	r.pdf.SetFont("Helvetica", "", 9)
	r.texto(rotulo, 5, "Subtotal", "", 0, "R")
	r.texto(valor, 5, documento.Reais(doc.Subtotal), "", 1, "R")
	if doc.Frete != nil {
		r.texto(rotulo, 5, "Frete", "", 0, "R")
		r.texto(valor, 5, documento.Reais(*doc.Frete), "", 1, "R")
	}
	r.pdf.SetFont("Helvetica", "B", 10)
	r.texto(rotulo, 7, "TOTAL", "", 0, "R")
	r.texto(valor, 7, documento.Reais(doc.Total), "", 1, "R")
	r.pdf.Ln(3)
}

func (r *renderizador) condicoes(doc *documento.Documento) {
	for _, s := range []struct{ titulo, valor string }{
		{"Observações", doc.Observacoes},
		{"Condições de pagamento", doc.CondicoesPagamento},
		{"Prazo de entrega", doc.PrazoEntrega},
		{"Validade da proposta", doc.Validade},
	} {
		if strings.TrimSpace(s.valor) == "" {
			continue
		}
		r.pdf.SetFont("Helvetica", "B", 9)
		r.texto(r.contentW, 5, s.titulo, "", 1, "L")
		r.pdf.SetFont("Helvetica", "", 9)
		r.pdf.MultiCell(r.contentW, 5, r.tr(s.valor), "", "L", false)
		r.pdf.Ln(1)
	}
}

// ── Technical sheet ──────────────────────────────────────────────────────────

func (r *renderizador) ficha(f documento.Ficha, imagens CarregadorImagem) {
	r.pdf.SetFont("Helvetica", "B", 13)
	r.texto(r.contentW, 8, fmt.Sprintf("Ficha técnica %d · %s", f.Numero, f.Produto), "", 1, "L")
	r.linhaHorizontal()

	if f.TemImagem() && imagens != nil {
		if dados, ok := imagens(f); ok {
			r.imagem(fmt.Sprintf("ficha-%d", f.Numero), dados)
		}
	}

	r.campo("Tecido", f.Tecido)

	r.pdf.SetFont("Helvetica", "B", 9)
	r.texto(30, pdfLinha, "Cor", "", 0, "L")
	x, y := r.pdf.GetXY()
	cr, cg, cb := hexRGB(f.CorHex)
	r.pdf.SetFillColor(cr, cg, cb)
	r.pdf.Rect(x, y+1, pdfAmostraCor, pdfLinha-2, "FD")
	r.pdf.SetX(x + pdfAmostraCor + 2)
	r.pdf.SetFont("Helvetica", "", 9)
	r.texto(r.contentW-30-pdfAmostraCor-2, pdfLinha, f.Cor, "", 1, "L")

	r.pdf.SetFont("Helvetica", "B", 9)
	r.texto(r.contentW, pdfLinha, "Estampas", "", 1, "L")
	r.pdf.SetFont("Helvetica", "", 9)
	for _, e := range f.DescricaoEstampas() {
		r.texto(r.contentW, 5, "• "+e, "", 1, "L")
	}
	r.pdf.Ln(2)

	r.grade(f)

	if strings.TrimSpace(f.ObservacaoTecnica) != "" {
		r.pdf.Ln(2)
		r.pdf.SetFont("Helvetica", "B", 9)
		r.texto(r.contentW, 5, "Observação técnica", "", 1, "L")
		r.pdf.SetFont("Helvetica", "", 9)
		r.pdf.MultiCell(r.contentW, 5, r.tr(f.ObservacaoTecnica), "", "L", false)
	}
}

func (r *renderizador) campo(rotulo, valor string) {
	r.pdf.SetFont("Helvetica", "B", 9)
	r.texto(30, pdfLinha, rotulo, "", 0, "L")
	r.pdf.SetFont("Helvetica", "", 9)
	r.texto(r.contentW-30, pdfLinha, valor, "", 1, "L")
}

func (r *renderizador) grade(f documento.Ficha) {
	r.pdf.SetFont("Helvetica", "B", 9)
	r.texto(r.contentW, pdfLinha, "Grade", "", 1, "L")
	if len(f.Grade) == 0 {
		r.pdf.SetFont("Helvetica", "", 9)
		r.texto(r.contentW, pdfLinha, fmt.Sprintf("Quantidade: %d", f.Quantidade), "", 1, "L")
		return
	}
	w := r.contentW / float64(len(f.Grade)+1)
	if w > 18 {
		w = 18
	}
	r.pdf.SetFillColor(230, 230, 230)
	for _, l := range f.Grade {
		r.pdf.CellFormat(w, pdfLinha, r.tr(l.Tamanho), "1", 0, "C", true, 0, "")
	}
	r.pdf.CellFormat(w, pdfLinha, "Total", "1", 1, "C", true, 0, "")
	r.pdf.SetFont("Helvetica", "", 9)
	for _, l := range f.Grade {
		r.pdf.CellFormat(w, pdfLinha, strconv.Itoa(l.Quantidade), "1", 0, "C", false, 0, "")
	}
	r.pdf.CellFormat(w, pdfLinha, strconv.Itoa(f.Quantidade), "1", 1, "C", false, 0, "")
}

// imagem draws the reference image scaled into a square box. Unsupported or
// corrupt images are skipped.
func (r *renderizador) imagem(nome string, dados []byte) {
	tipo := tipoImagem(dados)
	if tipo == "" {
		return
	}
	opts := fpdf.ImageOptions{ImageType: tipo, ReadDpi: true}
	info := r.pdf.RegisterImageOptionsReader(nome, opts, bytes.NewReader(dados))
	if !r.pdf.Ok() || info == nil {
		r.pdf.ClearError()
		return
	}
	w, h := info.Width(), info.Height()
	if w <= 0 || h <= 0 {
		return
	}
	escala := pdfImagemMax / w
	if h*escala > pdfImagemMax {
		escala = pdfImagemMax / h
	}
	x, y := r.pdf.GetXY()
	r.pdf.ImageOptions(nome, x, y, w*escala, h*escala, false, opts, 0, "")
	r.pdf.SetY(y + h*escala + 3)
}

func (r *renderizador) linhaHorizontal() {
	pageW, _ := r.pdf.GetPageSize()
	r.pdf.Line(pdfMargem, r.pdf.GetY(), pageW-pdfMargem, r.pdf.GetY())
	r.pdf.Ln(2)
}

func tipoImagem(dados []byte) string {
	switch {
	case bytes.HasPrefix(dados, []byte("\x89PNG")):
		return "PNG"
	case bytes.HasPrefix(dados, []byte("\xff\xd8")):
		return "JPG"
	case bytes.HasPrefix(dados, []byte("GIF8")):
		return "GIF"
	}
	return ""
}

// hexRGB parses "#RRGGBB"; anything else yields the neutral gray.
func hexRGB(hex string) (int, int, int) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		s = strings.TrimPrefix(documento.CorPadrao, "#")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		v, _ = strconv.ParseUint(strings.TrimPrefix(documento.CorPadrao, "#"), 16, 32)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func juntar(sep string, partes ...string) string {
	out := make([]string, 0, len(partes))
	for _, p := range partes {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
