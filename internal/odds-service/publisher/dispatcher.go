package publisher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

// Sink é um destino de eventos de snapshot (Kafka, Redis Pub/Sub)
type Sink interface {
	Name() string
	Publish(ctx context.Context, e events.SnapshotRefreshed) error
}

// Dispatcher tira a publicação do caminho da requisição: Enqueue nunca
// bloqueia e um worker entrega cada evento a todos os sinks.
type Dispatcher struct {
	log     *zap.Logger
	sinks   []Sink
	queue   chan events.SnapshotRefreshed
	timeout time.Duration

	// OnError é chamado para cada falha de entrega (opcional)
	OnError func(sink string, err error)

	wg sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		log:     log,
		sinks:   sinks,
		queue:   make(chan events.SnapshotRefreshed, buffer),
		timeout: 5 * time.Second,
	}
}

// Enqueue agenda o evento; com a fila cheia o evento é descartado e
// devolve false
func (d *Dispatcher) Enqueue(e events.SnapshotRefreshed) bool {
	if len(d.sinks) == 0 {
		return false
	}
	select {
	case d.queue <- e:
		return true
	default:
		d.log.Warn("snapshot event dropped, queue full", zap.String("sport", e.SportKey))
		return false
	}
}

// Start sobe o worker; ele drena a fila até ctx ser cancelado
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-d.queue:
				d.deliver(ctx, e)
			}
		}
	}()
}

// Wait bloqueia até o worker encerrar
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) deliver(ctx context.Context, e events.SnapshotRefreshed) {
	for _, s := range d.sinks {
		sctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := s.Publish(sctx, e)
		cancel()
		if err != nil {
			d.log.Warn("snapshot event publish failed",
				zap.String("sink", s.Name()),
				zap.String("sport", e.SportKey),
				zap.Error(err),
			)
			if d.OnError != nil {
				d.OnError(s.Name(), err)
			}
		}
	}
}
