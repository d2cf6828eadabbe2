// Package tamanho holds the canonical garment size catalog and the
// per-item quantity-by-size map.
//
// The catalog has three bands, always in this order:
//   - letters:        PP P M G GG G1..G7
//   - adult numeric:  36 38 ... 62 (even only)
//   - child numeric:  0 1 ... 13
//
// Every place that displays or exports sizes goes through Ordenar so the
// editor grid, the printed quotation and the technical sheet agree.
package tamanho

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Band identifies which part of the catalog a size belongs to.
type Band int

const (
	BandLetra Band = iota
	BandAdulto
	BandInfantil
	BandDesconhecida
)

func (b Band) String() string {
	switch b {
	case BandLetra:
		return "letra"
	case BandAdulto:
		return "adulto"
	case BandInfantil:
		return "infantil"
	default:
		return "desconhecida"
	}
}

var (
	letras   = []string{"PP", "P", "M", "G", "GG", "G1", "G2", "G3", "G4", "G5", "G6", "G7"}
	adultos  []string
	infantis []string

	catalogo []string
	posicao  map[string]int
	bandas   map[string]Band
)

func init() {
	for n := 36; n <= 62; n += 2 {
		adultos = append(adultos, strconv.Itoa(n))
	}
	for n := 0; n <= 13; n++ {
		infantis = append(infantis, strconv.Itoa(n))
	}

	catalogo = make([]string, 0, len(letras)+len(adultos)+len(infantis))
	posicao = make(map[string]int)
	bandas = make(map[string]Band)
	add := func(labels []string, b Band) {
		for _, l := range labels {
			posicao[l] = len(catalogo)
			bandas[l] = b
			catalogo = append(catalogo, l)
		}
	}
	add(letras, BandLetra)
	add(adultos, BandAdulto)
	add(infantis, BandInfantil)
}

// Catalogo returns a copy of the full canonical catalog.
func Catalogo() []string {
	out := make([]string, len(catalogo))
	copy(out, catalogo)
	return out
}

// PorBanda returns the catalog split by band.
func PorBanda() map[Band][]string {
	return map[Band][]string{
		BandLetra:    append([]string(nil), letras...),
		BandAdulto:   append([]string(nil), adultos...),
		BandInfantil: append([]string(nil), infantis...),
	}
}

// Normalizar trims and upper-cases a label ("gg " -> "GG").
func Normalizar(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Valido reports whether label belongs to the catalog.
func Valido(label string) bool {
	_, ok := posicao[Normalizar(label)]
	return ok
}

// BandaDe returns the band of label, or BandDesconhecida.
func BandaDe(label string) Band {
	if b, ok := bandas[Normalizar(label)]; ok {
		return b
	}
	return BandDesconhecida
}

// Menor reports whether a sorts before b in canonical order.
// Labels outside the catalog go last, compared lexicographically.
func Menor(a, b string) bool {
	pa, okA := posicao[Normalizar(a)]
	pb, okB := posicao[Normalizar(b)]
	switch {
	case okA && okB:
		return pa < pb
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

// Ordenar returns labels in canonical order. The input is not modified.
func Ordenar(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool { return Menor(out[i], out[j]) })
	return out
}

// Visiveis filters the catalog to the product restriction, keeping canonical
// order. A nil or empty restriction means every size is offered.
func Visiveis(restricao []string) []string {
	if len(restricao) == 0 {
		return Catalogo()
	}
	permitidos := make(map[string]bool, len(restricao))
	for _, r := range restricao {
		permitidos[Normalizar(r)] = true
	}
	out := make([]string, 0, len(restricao))
	for _, l := range catalogo {
		if permitidos[l] {
			out = append(out, l)
		}
	}
	return out
}

// Coagir converts free-form input into a non-negative integer quantity.
// Anything unparsable, NaN, infinite or negative becomes 0; fractions are truncated.
func Coagir(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
