// Package eligibility decides which workers may take the next unit of work,
// given a window of recent assignments, per-worker quotas and a cooldown.
//
// Evaluate can be called once with a full history, or repeatedly with only
// the newest batch and a *State carried from the previous call. The package
// does no locking: a State must not be evaluated by two goroutines at once.
package eligibility

import (
	"cmp"
	"maps"
	"slices"
)

const (
	// MaxWorkerIDs bounds the number of distinct worker IDs known to a state.
	MaxWorkerIDs = 100
	// DefaultCooldown replaces any cooldown that is not a non-negative integer.
	DefaultCooldown = 3
)

// Evaluate folds batch into state and returns the workers that may take the
// next assignment.
//
// Every batch element consumes one position of the global index, but only
// non-negative integers become worker records. quotas is merged over
// state.QuotaTable, with quotas winning on key collisions. Workers that have
// reached their limit are dropped from the retained table. Eligible workers
// with a record come first, ordered by their first assignment; workers that
// were never assigned follow.
//
// state may be nil, which behaves like a fresh empty state that is thrown
// away. When ErrCapacityExceeded is returned, state is left unmodified.
func Evaluate(batch []Value, quotas QuotaTable, cooldown Value, state *State) ([]int64, error) {
	var prior State
	if state != nil {
		prior = *state
	}

	known := knownWorkers(prior.WorkerRecords, batch)
	if known >= MaxWorkerIDs {
		return nil, ErrCapacityExceeded
	}

	table := mergeQuotas(prior.QuotaTable, quotas)
	start := max(prior.GlobalAssignmentCount, prior.RecordedAssignments())

	records := make(map[int64]Record, len(prior.WorkerRecords)+len(batch))
	maps.Copy(records, prior.WorkerRecords)
	for i, v := range batch {
		id, ok := workerID(v)
		if !ok {
			continue
		}
		index := start + i
		rec, seen := records[id]
		if !seen {
			rec.FirstAssignmentIndex = index
		}
		rec.AssignmentCount++
		rec.LastAssignmentIndex = index
		records[id] = rec
	}

	global := start + len(batch)
	minEligible := global - ResolveCooldown(cooldown)

	retained := make(QuotaTable, len(table))
	eligible := make([]int64, 0, len(table))
	var extras []int64
	for key, limit := range table {
		id, ok := workerID(key)
		if !ok || !IsNonNegativeInt(limit, true) {
			continue
		}
		rec, seen := records[id]
		if !seen {
			extras = append(extras, id)
			continue
		}
		ceiling, _ := limit.AsInt()
		if int64(rec.AssignmentCount) >= ceiling {
			continue
		}
		retained[key] = limit
		if rec.LastAssignmentIndex < minEligible {
			eligible = append(eligible, id)
		}
	}

	slices.SortFunc(eligible, func(a, b int64) int {
		return cmp.Compare(records[a].FirstAssignmentIndex, records[b].FirstAssignmentIndex)
	})

	// Never-assigned workers need one slot of headroom below the hard cap.
	if known < MaxWorkerIDs-1 {
		slices.Sort(extras)
		for _, id := range extras {
			retained[Int(id)] = table[Int(id)]
		}
		eligible = append(eligible, extras...)
	}

	if state != nil {
		state.QuotaTable = retained
		state.WorkerRecords = records
		state.GlobalAssignmentCount = global
	}
	return eligible, nil
}

// knownWorkers counts the distinct IDs on record together with the distinct
// raw values of the batch, valid or not.
func knownWorkers(records map[int64]Record, batch []Value) int {
	seen := make(map[Value]struct{}, len(records)+len(batch))
	for id := range records {
		seen[Int(id)] = struct{}{}
	}
	for _, v := range batch {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func mergeQuotas(standing, overrides QuotaTable) QuotaTable {
	merged := make(QuotaTable, len(standing)+len(overrides))
	maps.Copy(merged, standing)
	maps.Copy(merged, overrides)
	return merged
}

// ResolveCooldown returns the cooldown Evaluate applies for v: v itself when
// it is a non-negative integer, DefaultCooldown otherwise.
func ResolveCooldown(v Value) int {
	if !IsNonNegativeInt(v, false) {
		return DefaultCooldown
	}
	c, _ := v.AsInt()
	return int(c)
}
