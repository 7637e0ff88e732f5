// Package simulation drives the eligibility engine one assignment at a time:
// each step feeds back only the previous slot and hands the next task to the
// first eligible worker.
package simulation

import (
	"fmt"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

// DefaultMaxIdle caps a run of consecutive blank slots when Config.MaxIdle
// is not set.
const DefaultMaxIdle = 1 << 16

// Mode selects where the quotas live during a run.
type Mode int

const (
	// QuotasPerCall passes the quotas on every call against an empty state.
	QuotasPerCall Mode = iota
	// QuotasInState seeds the quotas into the state and passes none per call.
	QuotasInState
)

func (m Mode) String() string {
	switch m {
	case QuotasPerCall:
		return "per-call"
	case QuotasInState:
		return "in-state"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "per-call":
		return QuotasPerCall, nil
	case "in-state":
		return QuotasInState, nil
	default:
		return 0, fmt.Errorf("unknown simulation mode %q: want per-call or in-state", s)
	}
}

type Config struct {
	Tasks    int
	Quotas   eligibility.QuotaTable
	Cooldown eligibility.Value
	Mode     Mode
	// MaxIdle stops the run after this many blank slots in a row. Zero or
	// less means DefaultMaxIdle.
	MaxIdle int
}

// Result lists one entry per slot; a nil entry is a slot nobody could take.
// State is as of the last engine call, so the final assignment of a run that
// used up every task is not folded into it.
type Result struct {
	Assignments []*int64           `json:"assignments"`
	Remaining   int                `json:"remaining"`
	State       *eligibility.State `json:"state"`
}

// Run assigns cfg.Tasks tasks, or stops early once no worker can ever take
// another one: the retained quota table is empty after a call that found
// nobody eligible. A worker that is still retained leaves its cooldown after
// at most cooldown+1 blank slots, so a run only idles while someone is
// cooling down. Runs of more than cfg.MaxIdle blanks stop as well. The blank
// slots of a stopped run's final idle stretch are not reported.
func Run(cfg Config) (Result, error) {
	var (
		state  *eligibility.State
		quotas eligibility.QuotaTable
	)
	switch cfg.Mode {
	case QuotasPerCall:
		state = &eligibility.State{}
		quotas = cfg.Quotas
	case QuotasInState:
		state = eligibility.NewState(cfg.Quotas)
		quotas = eligibility.QuotaTable{}
	default:
		return Result{}, fmt.Errorf("unknown simulation mode %d", cfg.Mode)
	}

	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	remaining := cfg.Tasks
	slots := []*int64{}
	idle := 0

	for remaining > 0 {
		var batch []eligibility.Value
		if n := len(slots); n > 0 {
			batch = []eligibility.Value{slotValue(slots[n-1])}
		}

		eligible, err := eligibility.Evaluate(batch, quotas, cfg.Cooldown, state)
		if err != nil {
			return Result{}, fmt.Errorf("slot %d: %w", len(slots), err)
		}

		if len(eligible) > 0 {
			id := eligible[0]
			slots = append(slots, &id)
			remaining--
			idle = 0
			continue
		}

		if len(state.QuotaTable) == 0 || idle >= maxIdle {
			slots = slots[:len(slots)-idle]
			break
		}
		slots = append(slots, nil)
		idle++
	}

	return Result{
		Assignments: slots,
		Remaining:   remaining,
		State:       state,
	}, nil
}

func slotValue(slot *int64) eligibility.Value {
	if slot == nil {
		return eligibility.Null()
	}
	return eligibility.Int(*slot)
}
