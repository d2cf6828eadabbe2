package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"orcamentos/internal/dto"
)

// AssistenteClient calls the AI sidecar that turns free text into a tagged
// action. Calls go through the circuit breaker so a downed sidecar fails fast.
type AssistenteClient struct {
	url        string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewAssistenteClient(url string, timeout time.Duration, cb *CircuitBreaker) *AssistenteClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AssistenteClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Interpretar sends POST {url}/interpretar and decodes the tagged action.
func (c *AssistenteClient) Interpretar(ctx context.Context, pedido dto.PedidoAssistente) (*dto.AcaoAssistente, error) {
	var acao *dto.AcaoAssistente
	call := func() error {
		var err error
		acao, err = c.interpretar(ctx, pedido)
		return err
	}
	if c.cb == nil {
		return acao, call()
	}
	if err := c.cb.Execute(call); err != nil {
		return nil, err
	}
	return acao, nil
}

func (c *AssistenteClient) interpretar(ctx context.Context, pedido dto.PedidoAssistente) (*dto.AcaoAssistente, error) {
	body, err := json.Marshal(pedido)
	if err != nil {
		return nil, fmt.Errorf("assistente: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/interpretar", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("assistente: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistente: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		trecho, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("assistente: sidecar returned %d: %s", resp.StatusCode, bytes.TrimSpace(trecho))
	}

	var acao dto.AcaoAssistente
	if err := json.NewDecoder(resp.Body).Decode(&acao); err != nil {
		return nil, fmt.Errorf("assistente: decode response: %w", err)
	}
	return &acao, nil
}

// Estado exposes the breaker state for the health endpoint.
func (c *AssistenteClient) Estado() CBState {
	if c.cb == nil {
		return CBClosed
	}
	return c.cb.State()
}
