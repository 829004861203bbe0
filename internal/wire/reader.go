package wire

import (
	"bufio"
	"io"
)

// DefaultMaxLineLength bounds a single frame. The protocol requires at least
// 4 KiB; the default leaves headroom for quoted message bodies.
const DefaultMaxLineLength = 8192

// Reader reads LF-terminated frames from a byte stream.
//
// A zero-length read is treated as "peer may still be buffering": the first
// one is tolerated, the second surfaces ErrDisconnect. Some transports
// produce a benign zero read on half-close.
type Reader struct {
	r       *bufio.Reader
	maxLine int
}

// NewReader wraps r in a buffered frame reader. maxLine <= 0 selects
// DefaultMaxLineLength.
func NewReader(r io.Reader, maxLine int) *Reader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineLength
	}
	return &Reader{r: bufio.NewReader(r), maxLine: maxLine}
}

// ReadRequest reads one line and parses it as a Request. Parse failures are
// recoverable: the stream stays aligned on line boundaries and the caller may
// keep reading.
func (r *Reader) ReadRequest() (Request, error) {
	line, err := r.readLine()
	if err != nil {
		return Request{}, err
	}
	return ParseRequest(line)
}

// ReadResponse reads one line and parses it as a Response. Used by the client
// half of a conversation.
func (r *Reader) ReadResponse() (Response, error) {
	line, err := r.readLine()
	if err != nil {
		return Response{}, err
	}
	return ParseResponse(line)
}

func (r *Reader) readLine() (string, error) {
	zeroReads := 0
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			if line != "" {
				// Final frame without a trailing LF.
				return r.checkLen(line)
			}
			zeroReads++
			if zeroReads >= 2 {
				return "", ErrDisconnect
			}
			continue
		}
		return r.checkLen(line)
	}
}

func (r *Reader) checkLen(line string) (string, error) {
	if len(line) > r.maxLine {
		return "", &ParseError{Input: "line exceeds maximum length"}
	}
	return line, nil
}
