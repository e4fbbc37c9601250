package background

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Background runs fire-and-forget tasks on supervised goroutines so that a
// panicking task cannot take the process down and Shutdown can wait for all
// in-flight tasks.
type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

func (b *Background) Add(fn func() error) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		defer func() {
			if r := recover(); r != nil {
				b.log.Errorf("background task panicked: %v", r)
			}
		}()

		if err := fn(); err != nil {
			b.log.Errorf("background task failed: %v", err)
		}
	}()
}

// Shutdown blocks until all running tasks return or ctx expires.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
