package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// OutcomeSource yields values in [0,1) that drive simulated gateway
// outcomes. Production uses math/rand; tests inject a fixed source so
// success/failure/settlement scenarios are exactly reproducible.
type OutcomeSource func() float64

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func defaultSource() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}

// wait simulates network latency without ignoring cancellation.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newTransactionID(prefix string) string {
	return prefix + ulid.Make().String()
}
