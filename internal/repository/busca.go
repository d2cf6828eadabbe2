package repository

import "strings"

// nomeContem filters on the folded name column. The pattern is built by
// padraoContem so that "%" and "_" typed by the user match literally.
const nomeContem = `nome_busca LIKE ? ESCAPE '\'`

var escaparLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func padraoContem(trecho string) string {
	return "%" + escaparLike.Replace(trecho) + "%"
}
