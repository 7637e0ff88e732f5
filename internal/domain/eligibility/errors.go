package eligibility

import "errors"

// ErrCapacityExceeded is returned when the workers already on record plus the
// distinct values of the incoming batch reach MaxWorkerIDs. The call has no
// effect when it is returned.
var ErrCapacityExceeded = errors.New("The (assignments) list must have less than a 100 unique robot IDs") //nolint:staticcheck
