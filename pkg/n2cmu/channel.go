package n2cmu

// Channel is the duplex byte link to the coprocessor.
// A Channel is owned by exactly one Coprocessor, reads from other parties
// corrupt the framing.
type Channel interface {
	// Write sends all bytes in order.
	Write(p []byte) (int, error)
	// ReadByte consumes one buffered byte.
	ReadByte() (byte, error)
	// Buffered returns the count of received bytes not consumed yet.
	Buffered() int
	// Ready indicates the link is up.
	Ready() bool
}

// Opener is implemented by channels which must be started at a baud rate
// before use.
type Opener interface {
	Open(baud int) error
}
