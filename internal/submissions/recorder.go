package submissions

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Recorder writes submissions in the background. Logging never delays or
// fails a generation: errors are logged and dropped.
type Recorder struct {
	sink    Sink
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewRecorder bounds in-flight writes to maxInFlight.
func NewRecorder(sink Sink, maxInFlight int64, timeout time.Duration) *Recorder {
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		sink:    sink,
		sem:     semaphore.NewWeighted(maxInFlight),
		timeout: timeout,
		now:     time.Now,
	}
}

// Record queues sub and returns immediately. It reports false when the
// record was dropped because too many writes are in flight.
func (r *Recorder) Record(sub Submission) bool {
	if sub.Timestamp.IsZero() {
		sub.Timestamp = r.now()
	}
	if !r.sem.TryAcquire(1) {
		log.WithFields(log.Fields{
			"sink":       r.sink.Name(),
			"request_id": sub.RequestID,
		}).Warn("submission log saturated, dropping record")
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.sink.Write(ctx, sub); err != nil {
			log.WithFields(log.Fields{
				"sink":       r.sink.Name(),
				"request_id": sub.RequestID,
			}).WithError(err).Warn("failed to record submission")
		}
	}()
	return true
}

// Close waits for in-flight writes, then closes the sink. If ctx ends
// first the sink is closed anyway.
func (r *Recorder) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.WithField("sink", r.sink.Name()).Warn("closing submission log with writes still in flight")
	}
	return r.sink.Close()
}
