package redaction

import "io"

// Writer scrubs each write before passing it to the underlying writer.
type Writer struct {
	w        io.Writer
	redactor *Redactor
}

// NewWriter wraps w. A nil redactor passes writes through unchanged.
func NewWriter(w io.Writer, redactor *Redactor) *Writer {
	return &Writer{w: w, redactor: redactor}
}

// Write reports len(p) on success even when the scrubbed output differs in
// length, so callers never see a short write.
func (w *Writer) Write(p []byte) (int, error) {
	if w.redactor == nil {
		return w.w.Write(p)
	}
	if _, err := w.w.Write(w.redactor.ScrubBytes(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
