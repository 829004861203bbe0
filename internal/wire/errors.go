package wire

import (
	"errors"
	"fmt"
)

// ErrDisconnect is returned when the peer has closed its half of the
// connection and no further frames can be read. It marks normal closure,
// not a failure.
var ErrDisconnect = errors.New("client disconnected")

// ParseError reports a line that could not be parsed into a frame.
//
// Tag carries the request tag when tokenization succeeded far enough to
// recover one; error replies are attributed to that tag. An empty Tag means
// no tag could be extracted and the reply uses "*".
type ParseError struct {
	Tag   string
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid command %q", e.Input)
}

// AsParseError unwraps err into a *ParseError if it is one.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
