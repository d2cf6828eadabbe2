package tamanho

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogo_BandOrder(t *testing.T) {
	cat := Catalogo()
	assert.Len(t, cat, 12+14+14)
	assert.Equal(t, "PP", cat[0])
	assert.Equal(t, "G7", cat[11])
	assert.Equal(t, "36", cat[12])
	assert.Equal(t, "62", cat[25])
	assert.Equal(t, "0", cat[26])
	assert.Equal(t, "13", cat[len(cat)-1])
}

func TestCatalogo_ReturnsCopy(t *testing.T) {
	cat := Catalogo()
	cat[0] = "XX"
	assert.Equal(t, "PP", Catalogo()[0])
}

func TestOrdenar_IgnoresInsertionOrder(t *testing.T) {
	q := Quantidades{"G": 2, "PP": 1, "40": 3}
	linhas := q.Ordenadas()
	got := make([]string, 0, len(linhas))
	for _, l := range linhas {
		got = append(got, l.Tamanho)
	}
	assert.Equal(t, []string{"PP", "G", "40"}, got)
}

func TestOrdenar_AllBands(t *testing.T) {
	in := []string{"2", "GG", "38", "0", "P", "62", "12", "G3"}
	assert.Equal(t, []string{"P", "GG", "G3", "38", "62", "0", "2", "12"}, Ordenar(in))
	assert.Equal(t, []string{"2", "GG", "38", "0", "P", "62", "12", "G3"}, in, "input must not change")
}

func TestOrdenar_NumericNotLexicographic(t *testing.T) {
	assert.Equal(t, []string{"2", "10", "13"}, Ordenar([]string{"13", "10", "2"}))
	assert.Equal(t, []string{"40", "46", "52"}, Ordenar([]string{"52", "40", "46"}))
}

func TestOrdenar_UnknownLabelsLast(t *testing.T) {
	assert.Equal(t, []string{"M", "36", "EXG", "UNICO"}, Ordenar([]string{"UNICO", "36", "EXG", "M"}))
}

func TestVisiveis(t *testing.T) {
	t.Run("restriction keeps canonical order", func(t *testing.T) {
		assert.Equal(t, []string{"P", "G", "40"}, Visiveis([]string{"40", "g", "P"}))
	})
	t.Run("empty restriction shows everything", func(t *testing.T) {
		assert.Equal(t, Catalogo(), Visiveis(nil))
		assert.Equal(t, Catalogo(), Visiveis([]string{}))
	})
	t.Run("unknown labels are dropped", func(t *testing.T) {
		assert.Equal(t, []string{"M"}, Visiveis([]string{"M", "XG"}))
	})
}

func TestBandaDe(t *testing.T) {
	assert.Equal(t, BandLetra, BandaDe("gg"))
	assert.Equal(t, BandAdulto, BandaDe("44"))
	assert.Equal(t, BandInfantil, BandaDe("8"))
	assert.Equal(t, BandDesconhecida, BandaDe("37"))
	assert.True(t, Valido(" g1 "))
	assert.False(t, Valido("64"))
}

func TestCoagir(t *testing.T) {
	cases := map[string]int{
		"5":    5,
		" 12 ": 12,
		"":     0,
		"abc":  0,
		"-3":   0,
		"NaN":  0,
		"Inf":  0,
		"2.9":  2,
		"3,5":  3,
	}
	for in, want := range cases {
		assert.Equal(t, want, Coagir(in), "input %q", in)
	}
}

func TestQuantidades_Definir(t *testing.T) {
	q := Quantidades{"P": 2, "M": 5}
	assert.Equal(t, 10, q.Definir("g", 3))
	assert.Equal(t, 3, q["G"])
	assert.Equal(t, 7, q.Definir("M", -4), "negative stored as zero")
	assert.Equal(t, 0, q["M"])
}

func TestQuantidades_TotalCountsHiddenSizes(t *testing.T) {
	q := Quantidades{"P": 2, "M": 5, "G": 3, "48": 4}
	visiveis := Visiveis([]string{"P", "M", "G"})
	grade := Grade(visiveis, q)
	assert.Len(t, grade, 3)
	assert.Equal(t, 14, q.Total())
	assert.Equal(t, 15, q.Definir("P", 3))
	assert.Equal(t, 4, q["48"])
}

func TestGrade_MissingDefaultsToZero(t *testing.T) {
	grade := Grade([]string{"PP", "P"}, Quantidades{"P": 4})
	assert.Equal(t, []Linha{{"PP", 0}, {"P", 4}}, grade)
}
