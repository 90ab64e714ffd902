package driver

import (
	"sync"

	"clippyci/internal/pipeline"
)

// gatedSink forwards events until it is closed and drops them afterwards.
type gatedSink struct {
	mu     sync.RWMutex
	closed bool
	next   pipeline.Sink
}

func newGatedSink(next pipeline.Sink) *gatedSink {
	return &gatedSink{next: next}
}

func (s *gatedSink) OnEvent(evt pipeline.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.next.OnEvent(evt)
}

func (s *gatedSink) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
