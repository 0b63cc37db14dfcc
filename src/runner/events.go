package runner

import (
	"log/slog"

	"github.com/elee1766/naochat/src/aisdk"
)

// Sink receives the UI chunks of a run as they are produced.
type Sink interface {
	Send(chunk aisdk.UIChunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(chunk aisdk.UIChunk) error

func (f SinkFunc) Send(chunk aisdk.UIChunk) error { return f(chunk) }

// emitter folds every chunk into the run's accumulator and forwards it to the
// sink. Once the sink fails the run carries on without a client so the
// response still gets persisted.
type emitter struct {
	sink     Sink
	acc      *aisdk.Accumulator
	logger   *slog.Logger
	detached bool
}

func (e *emitter) emit(chunk aisdk.UIChunk) {
	if err := e.acc.Apply(chunk); err != nil {
		e.logger.Warn("chunk rejected", "type", chunk.Type, "error", err)
	}
	if e.sink == nil || e.detached {
		return
	}
	if err := e.sink.Send(chunk); err != nil {
		e.logger.Warn("sink failed, continuing without client", "type", chunk.Type, "error", err)
		e.detached = true
	}
}
