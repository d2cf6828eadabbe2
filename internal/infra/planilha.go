package infra

// planilha.go: quotation spreadsheet export using excelize.
// Sheet "Orçamento" has one column per size ordered in any item; sheet
// "Fichas" lists fabric, color and prints per item.

import (
	"fmt"
	"strings"

	"orcamentos/internal/documento"

	"github.com/xuri/excelize/v2"
)

const (
	PlanilhaOrcamento = "Orçamento"
	PlanilhaFichas    = "Fichas"
)

// GerarOrcamentoXLSX renders doc as an .xlsx workbook.
func GerarOrcamentoXLSX(doc *documento.Documento) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PlanilhaOrcamento); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(PlanilhaFichas); err != nil {
		return nil, err
	}

	negrito, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	formatoMoeda := "#,##0.00"
	moeda, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &formatoMoeda})

	if err := planilhaOrcamento(f, doc, negrito, moeda); err != nil {
		return nil, err
	}
	if err := planilhaFichas(f, doc, negrito); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func celula(col, row int) string {
	c, _ := excelize.CoordinatesToCellName(col, row)
	return c
}

func planilhaOrcamento(f *excelize.File, doc *documento.Documento, negrito, moeda int) error {
	sheet := PlanilhaOrcamento
	c := doc.Cabecalho
	cab := [][2]string{
		{"Emissor", c.Emissor.Nome},
		{"Orçamento", c.Numero},
		{"Cliente", c.ClienteNome},
		{"Contato", c.ClienteContato},
		{"Data", c.DataEmissao.Format("02/01/2006")},
		{"Situação", c.Status},
	}
	for i, kv := range cab {
		f.SetCellValue(sheet, celula(1, i+1), kv[0])
		f.SetCellValue(sheet, celula(2, i+1), kv[1])
		f.SetCellStyle(sheet, celula(1, i+1), celula(1, i+1), negrito)
	}

	row := len(cab) + 2
	headers := append([]string{"Produto"}, doc.Tamanhos...)
	headers = append(headers, "Quantidade", "Preço unitário", "Total")
	for i, h := range headers {
		f.SetCellValue(sheet, celula(i+1, row), h)
	}
	f.SetCellStyle(sheet, celula(1, row), celula(len(headers), row), negrito)

	colTamanho := make(map[string]int, len(doc.Tamanhos))
	for i, t := range doc.Tamanhos {
		colTamanho[t] = i + 2
	}
	colQtd := len(doc.Tamanhos) + 2

	for _, l := range doc.Linhas {
		row++
		f.SetCellValue(sheet, celula(1, row), l.Produto)
		for _, t := range l.Tamanhos {
			f.SetCellValue(sheet, celula(colTamanho[t.Tamanho], row), t.Quantidade)
		}
		f.SetCellValue(sheet, celula(colQtd, row), l.Quantidade)
		f.SetCellValue(sheet, celula(colQtd+1, row), l.PrecoUnitario.InexactFloat64())
		f.SetCellValue(sheet, celula(colQtd+2, row), l.Total.InexactFloat64())
		f.SetCellStyle(sheet, celula(colQtd+1, row), celula(colQtd+2, row), moeda)
	}

	row++
	totais := [][2]interface{}{{"Subtotal", doc.Subtotal.InexactFloat64()}}
	if doc.Frete != nil {
		totais = append(totais, [2]interface{}{"Frete", doc.Frete.InexactFloat64()})
	}
	totais = append(totais, [2]interface{}{"Total", doc.Total.InexactFloat64()})
	for _, t := range totais {
		row++
		f.SetCellValue(sheet, celula(colQtd+1, row), t[0])
		f.SetCellValue(sheet, celula(colQtd+2, row), t[1])
		f.SetCellStyle(sheet, celula(colQtd+1, row), celula(colQtd+1, row), negrito)
		f.SetCellStyle(sheet, celula(colQtd+2, row), celula(colQtd+2, row), moeda)
	}

	row++
	for _, kv := range [][2]string{
		{"Observações", doc.Observacoes},
		{"Condições de pagamento", doc.CondicoesPagamento},
		{"Prazo de entrega", doc.PrazoEntrega},
		{"Validade", doc.Validade},
	} {
		if strings.TrimSpace(kv[1]) == "" {
			continue
		}
		row++
		f.SetCellValue(sheet, celula(1, row), kv[0])
		f.SetCellValue(sheet, celula(2, row), kv[1])
		f.SetCellStyle(sheet, celula(1, row), celula(1, row), negrito)
	}

	col, _ := excelize.ColumnNumberToName(1)
	return f.SetColWidth(sheet, col, col, 32)
}

func planilhaFichas(f *excelize.File, doc *documento.Documento, negrito int) error {
	sheet := PlanilhaFichas
	headers := []string{"Item", "Produto", "Tecido", "Cor", "Estampas", "Grade", "Observação técnica"}
	for i, h := range headers {
		f.SetCellValue(sheet, celula(i+1, 1), h)
	}
	f.SetCellStyle(sheet, celula(1, 1), celula(len(headers), 1), negrito)

	for i, ficha := range doc.Fichas {
		row := i + 2
		f.SetCellValue(sheet, celula(1, row), ficha.Numero)
		f.SetCellValue(sheet, celula(2, row), ficha.Produto)
		f.SetCellValue(sheet, celula(3, row), ficha.Tecido)
		f.SetCellValue(sheet, celula(4, row), ficha.Cor)
		f.SetCellValue(sheet, celula(5, row), strings.Join(ficha.DescricaoEstampas(), "; "))
		f.SetCellValue(sheet, celula(6, row), documento.GradeTexto(ficha.Grade))
		f.SetCellValue(sheet, celula(7, row), ficha.ObservacaoTecnica)
	}
	for i, w := range []float64{6, 30, 30, 18, 40, 30, 40} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
