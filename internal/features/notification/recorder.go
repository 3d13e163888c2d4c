package notification

import (
	"context"
	"sync"
)

// Recorder keeps every message in memory. Used by tests and dry runs.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of what was recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// ByTemplate returns the recorded messages using template.
func (r *Recorder) ByTemplate(template TemplateID) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Template == template {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
