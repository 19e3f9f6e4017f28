package common

// WipeByteArray zeroes a sensitive buffer, typically a password, once it is
// no longer needed. Safe to call with nil.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
