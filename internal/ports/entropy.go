package ports

// Entropy abstracts an unpredictable source of 32-bit words.
// It seeds cosmetic randomness only; implementations need not be cryptographic.
type Entropy interface {
	// Draw32 returns one random word.
	Draw32() (uint32, error)
}
