// Package events доставляет события журнала во внешний брокер после коммита транзакций.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/splitledger/internal/domain"
)

const (
	defaultQueueSize      uint = 1024
	defaultWorkers        uint = 2
	defaultMaxAttempts    uint = 3
	defaultPublishTimeout      = 5 * time.Second
	defaultRetryDelay          = 200 * time.Millisecond
	defaultDrainTimeout        = 5 * time.Second
)

// Dispatcher принимает события от сервисного слоя и публикует их через Broker в фоне.
// Notify никогда не блокирует: при переполненной очереди событие отбрасывается с записью в лог.
type Dispatcher struct {
	broker         Broker
	l              *logrus.Entry
	queue          chan domain.LedgerEvent
	workers        uint
	maxAttempts    uint
	publishTimeout time.Duration
	retryDelay     time.Duration
	drainTimeout   time.Duration
	startOnce      sync.Once
}

// New создает диспетчер с очередью размера по умолчанию.
func New(broker Broker, l *logrus.Logger) *Dispatcher {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "events",
		"module":    "dispatcher",
	})

	return &Dispatcher{
		broker:         broker,
		l:              loggerEntry,
		queue:          make(chan domain.LedgerEvent, defaultQueueSize),
		workers:        defaultWorkers,
		maxAttempts:    defaultMaxAttempts,
		publishTimeout: defaultPublishTimeout,
		retryDelay:     defaultRetryDelay,
		drainTimeout:   defaultDrainTimeout,
	}
}

// SetWorkers устанавливает кол-во воркеров, публикующих события параллельно.
func (d *Dispatcher) SetWorkers(workers uint) *Dispatcher {
	if workers > 0 {
		d.workers = workers
	}
	return d
}

// SetQueueSize пересоздает очередь. Вызывать только до Run и до первого Notify.
func (d *Dispatcher) SetQueueSize(size uint) *Dispatcher {
	d.queue = make(chan domain.LedgerEvent, size)
	return d
}

// SetMaxAttempts устанавливает кол-во попыток публикации одного события.
func (d *Dispatcher) SetMaxAttempts(attempts uint) *Dispatcher {
	if attempts > 0 {
		d.maxAttempts = attempts
	}
	return d
}

// SetRetryDelay устанавливает базовую паузу между попытками.
func (d *Dispatcher) SetRetryDelay(delay time.Duration) *Dispatcher {
	d.retryDelay = delay
	return d
}

// SetDrainTimeout ограничивает время, за которое оставшиеся в очереди события публикуются при остановке.
func (d *Dispatcher) SetDrainTimeout(timeout time.Duration) *Dispatcher {
	d.drainTimeout = timeout
	return d
}

// Notify ставит события в очередь. Реализует service.EventNotifier.
func (d *Dispatcher) Notify(events ...domain.LedgerEvent) {
	for _, event := range events {
		select {
		case d.queue <- event:
		default:
			d.l.WithFields(logrus.Fields{
				"event_id":   event.ID,
				"event_type": event.Type,
			}).WithError(ErrQueueFull).Warn("dropping event")
		}
	}
}

// Run публикует события из очереди до отмены контекста.
//
// Алгоритм работы:
//  1. Запускает N воркеров (кол-во настраивается через SetWorkers), которые читают общую очередь.
//  2. Каждое событие публикуется с повторами (SetMaxAttempts) и паузой с разбросом между попытками.
//  3. После отмены контекста воркеры останавливаются, а то, что осталось в очереди, публикуется
//     в пределах SetDrainTimeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	started := false
	d.startOnce.Do(func() { started = true })
	if !started {
		return errors.New("dispatcher is already running")
	}

	d.l.WithFields(logrus.Fields{
		"workers":     d.workers,
		"maxAttempts": d.maxAttempts,
	}).Info("Starting")

	wg := new(sync.WaitGroup)
	wg.Add(int(d.workers)) // nolint:gosec
	for i := range d.workers {
		go d.worker(ctx, wg, i+1)
	}
	wg.Wait()

	d.l.Info("Got stop signal, draining queue...")
	d.drain()
	return nil
}

// worker публикует события из очереди, пока контекст не отменен.
func (d *Dispatcher) worker(ctx context.Context, wg *sync.WaitGroup, workerID uint) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.handle(ctx, workerID, event)
		}
	}
}

// drain публикует события, оставшиеся в очереди, на свежем контексте.
func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-d.queue:
			d.handle(ctx, 0, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, workerID uint, event domain.LedgerEvent) {
	l := d.l.WithFields(logrus.Fields{
		"worker":     workerID,
		"event_id":   event.ID,
		"event_type": event.Type,
		"entity_id":  event.EntityID,
	})
	if err := d.publish(ctx, event); err != nil {
		l.WithError(err).Error("publish event")
		return
	}
	l.Debug("Published")
}

// publish делает до maxAttempts попыток. Между попытками выдерживается пауза, прерываемая отменой контекста.
func (d *Dispatcher) publish(ctx context.Context, event domain.LedgerEvent) error {
	var lastErr error
	for attempt := uint(1); attempt <= d.maxAttempts; attempt++ {
		pubCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
		lastErr = d.broker.Publish(pubCtx, event)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return NewPublishError(string(event.Type), attempt, errors.Join(lastErr, ctx.Err()))
		case <-time.After(backoff(d.retryDelay, attempt)):
		}
	}
	return NewPublishError(string(event.Type), d.maxAttempts, lastErr)
}
