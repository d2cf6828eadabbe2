package tamanho

// Quantidades maps a size label to the quantity ordered for that size.
// Stored as a JSON column on itens_orcamento.
type Quantidades map[string]int

// Linha is one row of the size grid shown for an item.
type Linha struct {
	Tamanho    string `json:"tamanho"`
	Quantidade int    `json:"quantidade"`
}

// Total sums every entry, including sizes hidden by a product restriction.
func (q Quantidades) Total() int {
	total := 0
	for _, v := range q {
		if v > 0 {
			total += v
		}
	}
	return total
}

// Definir sets the quantity of one size and returns the new total.
// Negative values are stored as 0. Sizes outside the visible subset that are
// already in the map are kept untouched and still count towards the total.
func (q Quantidades) Definir(label string, qtd int) int {
	if qtd < 0 {
		qtd = 0
	}
	q[Normalizar(label)] = qtd
	return q.Total()
}

// Copia returns an independent copy.
func (q Quantidades) Copia() Quantidades {
	out := make(Quantidades, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// Ordenadas returns the non-zero entries in canonical order.
func (q Quantidades) Ordenadas() []Linha {
	labels := make([]string, 0, len(q))
	for k, v := range q {
		if v > 0 {
			labels = append(labels, k)
		}
	}
	out := make([]Linha, 0, len(labels))
	for _, l := range Ordenar(labels) {
		out = append(out, Linha{Tamanho: l, Quantidade: q[l]})
	}
	return out
}

// Grade builds the editable rows for the visible sizes; missing sizes read as 0.
func Grade(visiveis []string, q Quantidades) []Linha {
	out := make([]Linha, 0, len(visiveis))
	for _, l := range visiveis {
		out = append(out, Linha{Tamanho: l, Quantidade: q[l]})
	}
	return out
}
