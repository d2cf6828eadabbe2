package documento

import (
	"strings"

	"orcamentos/internal/textnorm"
)

// CorPadrao is used when the color name matches no known swatch.
const CorPadrao = "#BDBDBD"

type amostra struct {
	trecho string
	hex    string
}

// Keys are already normalized. Longest match wins so "azul marinho" beats "azul".
var amostras = []amostra{
	{"azul marinho", "#1A237E"},
	{"azul royal", "#1565C0"},
	{"azul", "#1E88E5"},
	{"preto", "#212121"},
	{"branco", "#FAFAFA"},
	{"vermelho", "#D32F2F"},
	{"verde", "#388E3C"},
	{"amarelo", "#FBC02D"},
	{"cinza", "#757575"},
	{"laranja", "#F57C00"},
	{"rosa", "#EC407A"},
	{"roxo", "#7B1FA2"},
	{"bege", "#D7CCC8"},
	{"vinho", "#6D1B2B"},
	{"marrom", "#5D4037"},
}

// CorHex maps a free-text color name to a swatch color.
func CorHex(nome string) string {
	n := textnorm.Normalizar(nome)
	if n == "" {
		return CorPadrao
	}
	melhor, tam := CorPadrao, 0
	for _, a := range amostras {
		if len(a.trecho) > tam && strings.Contains(n, a.trecho) {
			melhor, tam = a.hex, len(a.trecho)
		}
	}
	return melhor
}
