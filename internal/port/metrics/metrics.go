package metrics

import "time"

// Recorder receives evaluation outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveEvaluation(pool string, batch, eligible int, elapsed time.Duration)
	CapacityExceeded(pool string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveEvaluation(string, int, int, time.Duration) {}
func (Nop) CapacityExceeded(string)                           {}
