package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const subscriptionBuffer = 16

// Event is what live subscribers receive.
type Event struct {
	Template TemplateID `json:"template"`
	TaskID   string     `json:"task_id"`
	Subject  string     `json:"subject"`
	Body     string     `json:"body"`
}

// Hub pushes notifications to connected users. Slow subscribers lose events
// instead of blocking the sender.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	logger *zap.Logger
}

type Subscription struct {
	C      <-chan Event
	ch     chan Event
	userID string
	hub    *Hub
	once   sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a live feed for userID. Call Close when done.
func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.userID], s)
		if len(s.hub.subs[s.userID]) == 0 {
			delete(s.hub.subs, s.userID)
		}
		close(s.ch)
	})
}

// Subscribers returns the number of open feeds for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) Notify(ctx context.Context, msg Message) {
	for _, r := range msg.Recipients {
		h.mu.RLock()
		targets := make([]*Subscription, 0, len(h.subs[r.ID]))
		for sub := range h.subs[r.ID] {
			targets = append(targets, sub)
		}
		h.mu.RUnlock()
		if len(targets) == 0 {
			continue
		}

		subject, body, err := Render(msg.Template, withRecipient(msg.Params, r.Username))
		if err != nil {
			h.logger.Error("render notification", zap.String("template", string(msg.Template)), zap.Error(err))
			return
		}
		ev := Event{Template: msg.Template, TaskID: msg.Params["task_id"], Subject: subject, Body: body}

		h.mu.RLock()
		for _, sub := range targets {
			if _, open := h.subs[r.ID][sub]; !open {
				continue
			}
			select {
			case sub.ch <- ev:
			default:
				h.logger.Warn("live subscriber is full, dropping event", zap.String("user_id", r.ID))
			}
		}
		h.mu.RUnlock()
	}
}

// Multi fans a message out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, msg Message) {
	for _, n := range m {
		n.Notify(ctx, msg)
	}
}
