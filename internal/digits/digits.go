// Package digits writes integers as fixed-width, zero-padded ASCII decimal.
package digits

// Integer is any integer type, including named ones such as time.Month.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Encode writes v right-aligned into buf, most significant digit first.
// Positions not needed by v are filled with '0'. If buf is too narrow the
// high-order digits are dropped: Encode(12345, buf[:4]) writes "2345".
// Callers that must not truncate check Fits first.
//
// v must not be negative.
func Encode[T Integer](v T, buf []byte) {
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = byte(v%10) + '0'
		v /= 10
	}
}

// Fits reports whether v can be encoded in width digits without truncation.
func Fits[T Integer](v T, width int) bool {
	if v < 0 {
		return false
	}
	for ; width > 0; width-- {
		v /= 10
	}
	return v == 0
}
