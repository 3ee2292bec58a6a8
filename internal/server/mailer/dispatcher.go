package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	defaultWorkers     = 8
	defaultMaxRetries  = 3
	defaultBaseBackoff = time.Second
	defaultSendTimeout = 30 * time.Second
)

// ErrDispatcherClosed is returned by Enqueue after Close.
var ErrDispatcherClosed = errors.New("mailer: dispatcher closed")

// Dispatcher sends messages in the background. A failed send is retried
// with exponential backoff and finally logged; callers never see it.
type Dispatcher struct {
	sender     Sender
	log        logging.Logger
	timeout    time.Duration
	maxRetries uint64
	base       time.Duration

	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type Option func(*Dispatcher)

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.slots = make(chan struct{}, n)
		}
	}
}

func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(d *Dispatcher) {
		d.maxRetries = maxRetries
		d.base = base
	}
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

func NewDispatcher(sender Sender, log logging.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:     sender,
		log:        log,
		timeout:    defaultSendTimeout,
		maxRetries: defaultMaxRetries,
		base:       defaultBaseBackoff,
		slots:      make(chan struct{}, defaultWorkers),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue schedules msg for delivery and returns immediately. The send runs
// under its own context, detached from the caller's request.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.slots <- struct{}{}
		defer func() { <-d.slots }()
		d.deliver(msg)
	}()
	return nil
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	attempt := 0
	b := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := d.sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		d.log.Warn(ctx, "email send failed", "to", msg.To, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		d.log.Error(ctx, "email dropped", "to", msg.To, "subject", msg.Subject, "attempts", attempt, "error", err)
		return
	}
	d.log.Debug(ctx, "email sent", "to", msg.To, "subject", msg.Subject)
}

// Close stops accepting messages and waits for in-flight sends until ctx
// is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
