package vos

import (
	"io"
)

// VIO holds the standard streams of a process.
type VIO interface {
	Stdin() io.Reader
	Stdout() io.Writer
	Stderr() io.Writer
}

type VIOAdapter struct {
	IStdin  io.Reader
	IStdout io.Writer
	IStderr io.Writer
}

// NewVIOAdapter wraps the given streams, nil streams read nothing and discard
// writes.
func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) *VIOAdapter {
	return &VIOAdapter{
		IStdin:  readerOrEmpty(stdin),
		IStdout: writerOrDiscard(stdout),
		IStderr: writerOrDiscard(stderr),
	}
}

// NewNullIO creates a valid /dev/null style I/O, reads return EOF and
// writes will be discarded.
func NewNullIO() VIO {
	return NewVIOAdapter(nil, nil, nil)
}

var _ VIO = (*VIOAdapter)(nil)

func (pr *VIOAdapter) Stdin() io.Reader {
	return pr.IStdin
}

func (pr *VIOAdapter) Stdout() io.Writer {
	return pr.IStdout
}

func (pr *VIOAdapter) Stderr() io.Writer {
	return pr.IStderr
}

// EmptyReader implements io.Reader and always returns EOF.
type EmptyReader struct{}

var _ io.Reader = (*EmptyReader)(nil)

func (*EmptyReader) Read([]byte) (int, error) {
	return 0, io.EOF
}

func readerOrEmpty(r io.Reader) io.Reader {
	if r == nil {
		return &EmptyReader{}
	}
	return r
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
