package eligibility

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Record summarises the valid assignments seen for one worker. Indexes are
// positions in the global assignment index space.
type Record struct {
	AssignmentCount      int `json:"assignment_count"`
	FirstAssignmentIndex int `json:"first_assignment_index"`
	LastAssignmentIndex  int `json:"last_assignment_index"`
}

// QuotaTable maps a worker ID to the maximum number of assignments it may
// take. Keys and limits are raw values; only entries with a non-negative
// integer key and a strictly positive integer limit are honoured.
type QuotaTable map[Value]Value

// Quotas builds a QuotaTable from well-typed worker limits.
func Quotas(limits map[int64]int64) QuotaTable {
	t := make(QuotaTable, len(limits))
	for id, limit := range limits {
		t[Int(id)] = Int(limit)
	}
	return t
}

// Clone returns a copy of t. A nil table stays nil.
func (t QuotaTable) Clone() QuotaTable {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Valid returns the honoured entries of t as plain integers.
func (t QuotaTable) Valid() map[int64]int64 {
	out := make(map[int64]int64, len(t))
	for k, v := range t {
		id, ok := workerID(k)
		if !ok || !IsNonNegativeInt(v, true) {
			continue
		}
		limit, _ := v.AsInt()
		out[id] = limit
	}
	return out
}

type quotaEntry struct {
	Worker Value `json:"worker"`
	Limit  Value `json:"limit"`
}

// MarshalJSON encodes the table as a list of {"worker", "limit"} entries so
// keys keep their kind.
func (t QuotaTable) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	entries := make([]quotaEntry, 0, len(t))
	for k, v := range t {
		entries = append(entries, quotaEntry{Worker: k, Limit: v})
	}
	slices.SortFunc(entries, func(a, b quotaEntry) int { return compareValues(a.Worker, b.Worker) })
	return json.Marshal(entries)
}

// UnmarshalJSON accepts either the entry-list form written by MarshalJSON or
// a plain JSON object. Object keys that spell an integer become Int keys;
// anything else stays a String key and is therefore ignored by the engine.
func (t *QuotaTable) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	out := make(QuotaTable)
	switch {
	case len(data) > 0 && data[0] == '[':
		var entries []quotaEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("eligibility: decode quota entries: %w", err)
		}
		for _, e := range entries {
			out[e.Worker] = e.Limit
		}
	case len(data) > 0 && data[0] == '{':
		var raw map[string]Value
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("eligibility: decode quota object: %w", err)
		}
		for k, v := range raw {
			out[ParseKey(k)] = v
		}
	default:
		return fmt.Errorf("eligibility: quota table must be an object or a list, got %s", data)
	}
	*t = out
	return nil
}

// State is the context carried between incremental Evaluate calls. The
// caller owns it; Evaluate rewrites every field in place.
type State struct {
	// QuotaTable is nil when the caller has no standing quotas of its own.
	QuotaTable            QuotaTable       `json:"quota_table"`
	WorkerRecords         map[int64]Record `json:"worker_records"`
	GlobalAssignmentCount int              `json:"global_assignment_count"`
}

// NewState returns an empty state with the given standing quotas.
func NewState(quotas QuotaTable) *State {
	return &State{
		QuotaTable:    quotas.Clone(),
		WorkerRecords: make(map[int64]Record),
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{
		QuotaTable:            s.QuotaTable.Clone(),
		GlobalAssignmentCount: s.GlobalAssignmentCount,
	}
	if s.WorkerRecords != nil {
		c.WorkerRecords = maps.Clone(s.WorkerRecords)
	}
	return c
}

// RecordedAssignments is the sum of assignment counts over all records.
func (s *State) RecordedAssignments() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, r := range s.WorkerRecords {
		total += r.AssignmentCount
	}
	return total
}

// compareValues orders values by kind first, then by payload.
func compareValues(a, b Value) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindInt:
		return cmp.Compare(a.i, b.i)
	case KindFloat:
		return cmp.Compare(a.f, b.f)
	case KindString:
		return cmp.Compare(a.s, b.s)
	default:
		return 0
	}
}
