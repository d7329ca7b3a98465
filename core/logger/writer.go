package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

type writeOp struct {
	line  []byte
	flush chan error
}

// asyncWriter copies lines to every sink from a single goroutine. Sinks are
// flushed whenever the queue runs empty and on explicit Flush.
type asyncWriter struct {
	ops  chan writeOp
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	sinks []*bufio.Writer
	err   error
}

func newAsyncWriter(writers []io.Writer, queue int) *asyncWriter {
	if queue <= 0 {
		queue = 256
	}
	w := &asyncWriter{
		ops:  make(chan writeOp, queue),
		done: make(chan struct{}),
	}
	for _, s := range writers {
		if s != nil {
			w.sinks = append(w.sinks, bufio.NewWriter(s))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for op := range w.ops {
		if op.flush != nil {
			op.flush <- w.flushSinks()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(op.line); err != nil && w.err == nil {
				w.err = err
			}
		}
		if len(w.ops) == 0 {
			_ = w.flushSinks()
		}
	}
	_ = w.flushSinks()
}

func (w *asyncWriter) flushSinks() error {
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil && w.err == nil {
			w.err = err
		}
	}
	return w.err
}

// Write queues a copy of line. It blocks while the queue is full.
func (w *asyncWriter) Write(line []byte) error {
	if len(line) == 0 {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.ops <- writeOp{line: append([]byte(nil), line...)}
	return nil
}

// Flush waits until every queued line reached the sinks and returns the
// first write error seen so far.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return errWriterClosed
	}
	ack := make(chan error, 1)
	w.ops <- writeOp{flush: ack}
	w.mu.RUnlock()
	return <-ack
}

// Close drains the queue, flushes the sinks and stops the goroutine.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.mu.Unlock()
	<-w.done
	return w.err
}
