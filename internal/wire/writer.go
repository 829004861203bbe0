package wire

import (
	"bufio"
	"io"
)

// Writer writes frames to a byte stream, one LF-terminated line per frame.
// Each write is flushed so a frame is never stuck in the buffer behind a
// blocked reader on the far side.
//
// Writer is not safe for concurrent use; the connection driver serializes all
// writes through the mailbox drain.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a buffered frame writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteResponse renders and writes one response frame.
func (w *Writer) WriteResponse(resp Response) error {
	if _, err := w.w.WriteString(resp.Render()); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteRequest renders and writes one request frame. Used by the client half
// of a conversation.
func (w *Writer) WriteRequest(req Request) error {
	if _, err := w.w.WriteString(req.Render()); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}
