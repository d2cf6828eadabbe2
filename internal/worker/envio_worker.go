package worker

// envio_worker.go
// Renders a quotation PDF and emails it to the address given by the seller.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EnvioOrcamentoPayload is the job envelope sent to QueueEnvio.
type EnvioOrcamentoPayload struct {
	OrcamentoID string `json:"orcamento_id"`
	Numero      string `json:"numero"`
	Email       string `json:"email"`
	Mensagem    string `json:"mensagem"`
}

// GeradorPDF renders a stored quotation.
type GeradorPDF interface {
	GerarPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// Remetente delivers an email with one attachment.
type Remetente interface {
	EnviarComAnexo(to, assunto, corpo, nomeArquivo string, anexo []byte) error
}

// EnvioWorker processes QueueEnvio jobs.
type EnvioWorker struct {
	gerador    GeradorPDF
	remetente  Remetente
	tentativas int
	espera     time.Duration
}

// NewEnvioWorker creates the worker. tentativas bounds the SMTP attempts per job.
func NewEnvioWorker(gerador GeradorPDF, remetente Remetente, tentativas int) *EnvioWorker {
	return &EnvioWorker{gerador: gerador, remetente: remetente, tentativas: tentativas, espera: time.Second}
}

// Process renders the PDF once and retries only the delivery.
func (w *EnvioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EnvioOrcamentoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("envio_worker: invalid payload: %w", err)
	}
	if payload.Email == "" {
		return errors.New("envio_worker: email vazio")
	}
	id, err := uuid.Parse(payload.OrcamentoID)
	if err != nil {
		return fmt.Errorf("envio_worker: orcamento_id inválido: %w", err)
	}

	pdf, nome, err := w.gerador.GerarPDF(ctx, id)
	if err != nil {
		return fmt.Errorf("envio_worker: gerar PDF: %w", err)
	}

	assunto := "Orçamento " + payload.Numero
	corpo := payload.Mensagem
	if corpo == "" {
		corpo = "Segue em anexo o orçamento solicitado."
	}

	err = withRetry(ctx, w.tentativas, w.espera, func(attempt int) error {
		if err := w.remetente.EnviarComAnexo(payload.Email, assunto, corpo, nome, pdf); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("orcamento_id", payload.OrcamentoID).
				Msg("envio_worker: SMTP attempt failed")
			return err
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("orcamento_id", payload.OrcamentoID).Msg("envio_worker: failed after all retries")
		return err
	}
	log.Info().Str("to", payload.Email).Str("orcamento_id", payload.OrcamentoID).Msg("envio_worker: orçamento enviado")
	return nil
}
