package eligibility

// IsNonNegativeInt reports whether v is an integer and v >= 0, or v > 0 when
// nonzero is set. Any other kind is rejected, including integral floats and
// numeric strings.
func IsNonNegativeInt(v Value, nonzero bool) bool {
	i, ok := v.AsInt()
	if !ok {
		return false
	}
	if nonzero {
		return i > 0
	}
	return i >= 0
}

// workerID narrows a raw value to a worker ID.
func workerID(v Value) (int64, bool) {
	if !IsNonNegativeInt(v, false) {
		return 0, false
	}
	id, _ := v.AsInt()
	return id, true
}
