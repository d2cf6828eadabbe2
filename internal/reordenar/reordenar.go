// Package reordenar implements manual (drag-and-drop) reordering.
//
// There is a single move algorithm. Both the generic list container and the
// quotation item table use it through Controller, so the splice/insert logic
// exists in one place only.
package reordenar

// Mover removes origem from its current index and inserts it immediately
// before destino's index in the list that remains after the removal.
// It returns a new slice and true, or the input unchanged and false when
// origem == destino or either key is not present.
func Mover[T any, K comparable](itens []T, chave func(T) K, origem, destino K) ([]T, bool) {
	if origem == destino {
		return itens, false
	}
	from := indice(itens, chave, origem)
	if from < 0 || indice(itens, chave, destino) < 0 {
		return itens, false
	}

	restante := make([]T, 0, len(itens))
	restante = append(restante, itens[:from]...)
	restante = append(restante, itens[from+1:]...)

	to := indice(restante, chave, destino)
	out := make([]T, 0, len(itens))
	out = append(out, restante[:to]...)
	out = append(out, itens[from])
	out = append(out, restante[to:]...)
	return out, true
}

// MoverParaFim moves origem to the end of the list.
// Returns false when origem is missing or already last.
func MoverParaFim[T any, K comparable](itens []T, chave func(T) K, origem K) ([]T, bool) {
	from := indice(itens, chave, origem)
	if from < 0 || from == len(itens)-1 {
		return itens, false
	}
	out := make([]T, 0, len(itens))
	out = append(out, itens[:from]...)
	out = append(out, itens[from+1:]...)
	out = append(out, itens[from])
	return out, true
}

// EhPermutacao reports whether ids is a reordering of the keys of itens:
// same length, same keys, no duplicates.
func EhPermutacao[T any, K comparable](itens []T, chave func(T) K, ids []K) bool {
	if len(itens) != len(ids) {
		return false
	}
	restantes := make(map[K]int, len(itens))
	for _, it := range itens {
		restantes[chave(it)]++
	}
	for _, id := range ids {
		if restantes[id] == 0 {
			return false
		}
		restantes[id]--
	}
	return true
}

// Aplicar returns itens arranged in the order given by ids.
// The caller must check EhPermutacao first.
func Aplicar[T any, K comparable](itens []T, chave func(T) K, ids []K) []T {
	porChave := make(map[K]T, len(itens))
	for _, it := range itens {
		porChave[chave(it)] = it
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, porChave[id])
	}
	return out
}

func indice[T any, K comparable](itens []T, chave func(T) K, k K) int {
	for i, it := range itens {
		if chave(it) == k {
			return i
		}
	}
	return -1
}
