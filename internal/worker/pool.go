package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEnvio = "jobs:envio_orcamento"

	JobEnvioOrcamento = "envio_orcamento"
)

// pausaAposErro is how long a worker waits after BRPOP fails for a reason
// other than an empty queue, so an unreachable Redis is not polled in a loop.
var pausaAposErro = 2 * time.Second

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Processador handles one job type. A returned error sends the job to the DLQ;
// retries happen inside the processor.
type Processador interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEnvioOrcamento pushes a "send quotation by email" job to Redis.
func (d *Dispatcher) EnqueueEnvioOrcamento(ctx context.Context, payload EnvioOrcamentoPayload) error {
	return d.enqueue(ctx, QueueEnvio, JobEnvioOrcamento, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return fmt.Errorf("worker: fila %s indisponível sem redis", queue)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming QueueEnvio.
// Each goroutine blocks on BRPOP and is idle between jobs.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processadores map[string]Processador) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, processadores)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, processadores map[string]Processador) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEnvio).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP falhou")
					pausar(ctx, pausaAposErro)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], processadores)
		}
	}
}

func pausar(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// processJob routes one raw job to its processor. Unknown types and failed
// jobs end up in the queue's DLQ.
func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, processadores map[string]Processador) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		bruto, _ := json.Marshal(raw)
		SendToDLQ(ctx, rdb, queue, Job{Type: "invalido", Payload: bruto}, err.Error())
		return
	}
	p, ok := processadores[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no processor for job type")
		SendToDLQ(ctx, rdb, queue, job, "tipo de job desconhecido")
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := p.Process(ctx, job.Payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job, err.Error())
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// starting at base (base, 2×base, 4×base …). Returns the last error.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
