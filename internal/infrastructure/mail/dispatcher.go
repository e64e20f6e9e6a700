package mail

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/auth-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	retryBackoff   = 500 * time.Millisecond
)

type job struct {
	email string
	code  string
	reply chan error
}

// Dispatcher routes deliveries to a fixed set of workers using consistent
// hashing on the recipient address, so resends to the same email stay
// ordered. Each job carries a reply channel the caller awaits, which is how
// delivery failures surface synchronously. Workers retry a failed send once
// after a short backoff.
type Dispatcher struct {
	workers []chan job
	sender  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers fronting
// the given sender. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendOTP enqueues a delivery and waits for the worker's verdict. It returns
// early with ctx.Err() if the caller gives up first; the delivery itself
// still runs to completion.
func (d *Dispatcher) SendOTP(ctx context.Context, email, code string) error {
	j := job{email: email, code: code, reply: make(chan error, 1)}

	select {
	case d.workers[d.shardIndex(email)] <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			err := d.sender.SendOTP(ctx, j.email, j.code)
			if err != nil {
				d.log.Warn().Err(err).
					Str("email", j.email).
					Int("worker_id", id).
					Msg("delivery failed, retrying")

				select {
				case <-ctx.Done():
					j.reply <- ctx.Err()
					continue
				case <-time.After(retryBackoff):
				}
				err = d.sender.SendOTP(ctx, j.email, j.code)
			}
			j.reply <- err
		}
	}
}
