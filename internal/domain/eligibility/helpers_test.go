package eligibility_test

import (
	"fmt"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

// val converts a Go literal into the Value a JSON feed would have produced.
func val(x any) eligibility.Value {
	switch v := x.(type) {
	case nil:
		return eligibility.Null()
	case bool:
		return eligibility.Bool(v)
	case int:
		return eligibility.Int(int64(v))
	case int64:
		return eligibility.Int(v)
	case float64:
		return eligibility.Float(v)
	case string:
		return eligibility.String(v)
	case eligibility.Value:
		return v
	default:
		panic(fmt.Sprintf("val: unsupported literal %T", x))
	}
}

func batch(xs ...any) []eligibility.Value {
	out := make([]eligibility.Value, len(xs))
	for i, x := range xs {
		out[i] = val(x)
	}
	return out
}

// quotas builds a table from alternating key, limit literals.
func quotas(kv ...any) eligibility.QuotaTable {
	if len(kv)%2 != 0 {
		panic("quotas: odd number of arguments")
	}
	t := make(eligibility.QuotaTable, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		t[val(kv[i])] = val(kv[i+1])
	}
	return t
}

func idRange(from, to int) []eligibility.Value {
	out := make([]eligibility.Value, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, eligibility.Int(int64(i)))
	}
	return out
}

func uniformQuotas(n int, limit int64) eligibility.QuotaTable {
	t := make(eligibility.QuotaTable, n)
	for i := 0; i < n; i++ {
		t[eligibility.Int(int64(i))] = eligibility.Int(limit)
	}
	return t
}

func rec(count, first, last int) eligibility.Record {
	return eligibility.Record{AssignmentCount: count, FirstAssignmentIndex: first, LastAssignmentIndex: last}
}

func ids(xs ...int64) []int64 {
	if xs == nil {
		return []int64{}
	}
	return xs
}

var noCooldown = eligibility.Null()

func cd(n int) eligibility.Value { return eligibility.Int(int64(n)) }
