package types

import "fmt"

// Stream is a named live feed a connection can explicitly subscribe to
type Stream string

const (
	StreamTransactions Stream = "transactions"
	StreamAlerts       Stream = "alerts"
	StreamCases        Stream = "cases"
)

// IsValid checks if the stream is known
func (s Stream) IsValid() bool {
	switch s {
	case StreamTransactions, StreamAlerts, StreamCases:
		return true
	default:
		return false
	}
}

func (s Stream) String() string {
	return string(s)
}

// ParseStream parses a string into a Stream
func ParseStream(s string) (Stream, error) {
	stream := Stream(s)
	if !stream.IsValid() {
		return "", fmt.Errorf("invalid stream: %s", s)
	}
	return stream, nil
}
