package ports

// Device is the output the clock is displayed on.
type Device interface {
	// Publish shows frame, which always holds 17 ASCII digits.
	// It must be synchronous: the frame is committed when Publish returns.
	// The slice is only valid for the duration of the call.
	Publish(frame []byte) error
}
