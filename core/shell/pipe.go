package shell

import (
	"io"
	"sync"

	"github.com/josephlewis42/pipesh/core/invariant"
)

// DefaultPipeCapacity is the number of bytes a pipe buffers before writers
// block.
const DefaultPipeCapacity = 64 * 1024

// NewPipe creates a connected pair: bytes written to the sink can be read in
// order from the source. Writes block while capacity bytes are buffered and
// reads block until data is available or the sink is closed.
//
// Closing the source makes pending and future writes fail with
// io.ErrClosedPipe.
func NewPipe(capacity int) (*PipeSink, *PipeSource) {
	if capacity <= 0 {
		capacity = DefaultPipeCapacity
	}

	p := &pipe{buf: make([]byte, capacity)}
	p.cond = sync.NewCond(&p.mu)
	return &PipeSink{p}, &PipeSource{p}
}

type pipe struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf   []byte
	start int
	size  int

	sinkClosed   bool
	sourceClosed bool
}

func (p *pipe) write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0
	for len(b) > 0 {
		for p.size == len(p.buf) && !p.sourceClosed && !p.sinkClosed {
			p.cond.Wait()
		}
		if p.sourceClosed || p.sinkClosed {
			return written, io.ErrClosedPipe
		}

		end := (p.start + p.size) % len(p.buf)
		free := len(p.buf) - p.size
		if end+free > len(p.buf) {
			free = len(p.buf) - end
		}
		n := copy(p.buf[end:end+free], b)

		p.size += n
		written += n
		b = b[n:]
		p.cond.Broadcast()
	}

	return written, nil
}

func (p *pipe) read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.size == 0 && !p.sinkClosed && !p.sourceClosed {
		p.cond.Wait()
	}
	switch {
	case p.sourceClosed:
		return 0, io.ErrClosedPipe
	case p.size == 0:
		return 0, io.EOF
	}

	avail := p.size
	if p.start+avail > len(p.buf) {
		avail = len(p.buf) - p.start
	}
	n := copy(b, p.buf[p.start:p.start+avail])

	p.start = (p.start + n) % len(p.buf)
	p.size -= n
	invariant.Invariant(p.size >= 0, "pipe size went negative")
	p.cond.Broadcast()

	return n, nil
}

func (p *pipe) closeSink() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sinkClosed = true
	p.cond.Broadcast()
	return nil
}

func (p *pipe) closeSource() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sourceClosed = true
	p.size = 0
	p.cond.Broadcast()
	return nil
}

// PipeSink is the write end of a pipe.
type PipeSink struct {
	p *pipe
}

var _ io.WriteCloser = (*PipeSink)(nil)

func (s *PipeSink) Write(b []byte) (int, error) {
	return s.p.write(b)
}

// Close signals end of stream to the reader once buffered data is drained.
func (s *PipeSink) Close() error {
	return s.p.closeSink()
}

// PipeSource is the read end of a pipe.
type PipeSource struct {
	p *pipe
}

var _ io.ReadCloser = (*PipeSource)(nil)

func (s *PipeSource) Read(b []byte) (int, error) {
	return s.p.read(b)
}

// Close discards buffered data and unblocks writers.
func (s *PipeSource) Close() error {
	return s.p.closeSource()
}
