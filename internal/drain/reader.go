package drain

import (
	"bufio"
	"io"
)

// Reader drains lines from a render process's combined output stream into a
// Buffer. It runs in its own goroutine for the lifetime of one child
// process and is retired with a bounded join after the child exits.
//
// I/O errors are swallowed: the child's lifecycle is tracked independently
// by the supervisor's wait on the process, so a broken pipe here means at
// worst some lost progress lines.
type Reader struct {
	reader io.Reader
	buffer *Buffer
}

// NewReader creates a reader for the given stream, typically the combined
// stdout/stderr pipe of a render process.
func NewReader(r io.Reader, buffer *Buffer) *Reader {
	return &Reader{
		reader: r,
		buffer: buffer,
	}
}

// Run reads lines until EOF or a read error, feeding each non-empty line to
// the buffer. The buffer channel is always closed on exit.
func (r *Reader) Run() {
	defer r.buffer.CloseChannel()

	scanner := bufio.NewScanner(r.reader)

	// Render output can carry very long INFO lines.
	const maxLineSize = 64 * 1024
	scanner.Buffer(make([]byte, maxLineSize), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		r.buffer.FeedLine(line)
	}
	// Scanner errors are intentionally ignored.
}
