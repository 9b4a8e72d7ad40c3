// Package drain provides the lossy line buffer between a render process's
// combined output stream and the supervisor's poll loop.
//
// The buffer is deliberately bounded and drop-on-full: a render can emit
// bursts of output far faster than the poll loop consumes it, and progress
// counting must never block the child process. Losing a line never affects
// duration or success measurement, which are derived from exit-code polling.
//
// Two layers:
//
//	Layer 1 (Reader): reads lines fast, drops if the buffer is full
//	Layer 2 (poll loop): consumes via TryNext at its own pace
package drain

import (
	"sync"
	"sync/atomic"
)

// Buffer is a bounded single-writer/single-reader line queue backed by a
// buffered channel. The Reader is the sole writer, the supervisor's poll
// loop the sole consumer.
type Buffer struct {
	lineChan  chan string
	closeOnce sync.Once

	linesRead    atomic.Int64
	linesDropped atomic.Int64
}

// DefaultBufferSize bounds how many lines can be pending between the reader
// and the poll loop.
const DefaultBufferSize = 1000

// NewBuffer creates a buffer holding at most size pending lines.
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &Buffer{
		lineChan: make(chan string, size),
	}
}

// FeedLine queues a line without blocking. Returns true if queued, false if
// the buffer was full and the line was dropped.
func (b *Buffer) FeedLine(line string) bool {
	b.linesRead.Add(1)

	select {
	case b.lineChan <- line:
		return true
	default:
		b.linesDropped.Add(1)
		return false
	}
}

// TryNext pops the oldest pending line without blocking. The second return
// is false when the buffer is currently empty or has been closed and fully
// drained.
func (b *Buffer) TryNext() (string, bool) {
	select {
	case line, ok := <-b.lineChan:
		return line, ok
	default:
		return "", false
	}
}

// CloseChannel marks the end of the stream. Called by the Reader on exit;
// idempotent.
func (b *Buffer) CloseChannel() {
	b.closeOnce.Do(func() {
		close(b.lineChan)
	})
}

// Stats returns the total lines fed and the lines dropped due to a full
// buffer.
func (b *Buffer) Stats() (read, dropped int64) {
	return b.linesRead.Load(), b.linesDropped.Load()
}

// DropRate returns the fraction of fed lines that were dropped.
func (b *Buffer) DropRate() float64 {
	read := b.linesRead.Load()
	if read == 0 {
		return 0
	}
	return float64(b.linesDropped.Load()) / float64(read)
}
