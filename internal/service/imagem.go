package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"orcamentos/internal/documento"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImagemStore keeps item reference images in object storage.
type ImagemStore interface {
	Salvar(ctx context.Context, chave string, dados []byte, contentType string) error
	Carregar(ctx context.Context, chave string) ([]byte, error)
	Remover(ctx context.Context, chave string) error
}

// decodificarImagem accepts plain base64 or a data: URL and checks that the
// payload is an image no larger than max bytes.
func decodificarImagem(raw string, max int) ([]byte, string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	// decoding yields at least DecodedLen-2 bytes, so larger payloads are
	// rejected before they are decoded
	if max > 0 && base64.StdEncoding.DecodedLen(len(s))-2 > max {
		return nil, "", &ValidacaoError{Campos: map[string]string{"imagem": "max"}}
	}
	dados, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		dados, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil || len(dados) == 0 {
		return nil, "", &ValidacaoError{Campos: map[string]string{"imagem": "base64"}}
	}
	if max > 0 && len(dados) > max {
		return nil, "", &ValidacaoError{Campos: map[string]string{"imagem": "max"}}
	}
	ct := http.DetectContentType(dados)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", &ValidacaoError{Campos: map[string]string{"imagem": "image"}}
	}
	return dados, ct, nil
}

// chaveImagem is unique per upload, so replacing an image never overwrites
// the object a stored item still points to.
func chaveImagem(orcID, itemID, versao uuid.UUID) string {
	return fmt.Sprintf("orcamentos/%s/itens/%s/%s", orcID, itemID, versao)
}

// guardarImagem uploads the image and returns its key. Without a store, or
// when the upload fails, the image is kept inline as base64.
func (s *orcamentoService) guardarImagem(ctx context.Context, orcID, itemID uuid.UUID, dados []byte, ct string) (chave, inline *string) {
	if s.imagens != nil {
		k := chaveImagem(orcID, itemID, s.ids.NovoID())
		err := s.imagens.Salvar(ctx, k, dados, ct)
		if err == nil {
			return &k, nil
		}
		log.Warn().Err(err).Str("chave", k).Msg("orcamento: falha ao enviar imagem, mantendo inline")
	}
	b64 := base64.StdEncoding.EncodeToString(dados)
	return nil, &b64
}

// descartarImagens removes objects no stored item references: uploads whose
// database write failed, and images replaced or removed by a successful one.
func (s *orcamentoService) descartarImagens(ctx context.Context, chaves ...*string) {
	if s.imagens == nil {
		return
	}
	for _, k := range chaves {
		if k == nil || *k == "" {
			continue
		}
		if err := s.imagens.Remover(ctx, *k); err != nil {
			log.Warn().Err(err).Str("chave", *k).Msg("orcamento: falha ao remover imagem órfã")
		}
	}
}

// carregadorImagens resolves the image bytes of a technical sheet for rendering.
func (s *orcamentoService) carregadorImagens(ctx context.Context) func(documento.Ficha) ([]byte, bool) {
	return func(f documento.Ficha) ([]byte, bool) {
		if f.ImagemChave != "" && s.imagens != nil {
			dados, err := s.imagens.Carregar(ctx, f.ImagemChave)
			if err == nil {
				return dados, true
			}
			log.Warn().Err(err).Str("chave", f.ImagemChave).Msg("orcamento: imagem indisponível para o documento")
		}
		if f.ImagemBase64 != "" {
			if dados, err := base64.StdEncoding.DecodeString(f.ImagemBase64); err == nil {
				return dados, true
			}
		}
		return nil, false
	}
}
