package locator

import (
	"fmt"
	"io"
)

// Renderer is notified after every state transition.
type Renderer interface {
	Render(State)
}

type RendererFunc func(State)

func (f RendererFunc) Render(s State) { f(s) }

// WriterRenderer prints log lines as they are appended and status changes as
// they happen. It is the terminal view used by cmd/findstate.
type WriterRenderer struct {
	W io.Writer

	printed int
	status  string
}

func NewWriterRenderer(w io.Writer) *WriterRenderer {
	return &WriterRenderer{W: w}
}

func (r *WriterRenderer) Render(s State) {
	if r.printed > len(s.Log) {
		r.printed = 0
	}
	for _, line := range s.Log[r.printed:] {
		fmt.Fprintln(r.W, line)
	}
	r.printed = len(s.Log)

	if s.Status != r.status {
		fmt.Fprintf(r.W, "status: %s\n", s.Status)
		r.status = s.Status
	}
}
