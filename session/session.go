// Package session owns the live capture sessions. Each session is one
// transcriber working through a hand; the manager routes operations to the
// session's engine state and keeps the persist tracker in sync after every
// mutation.
package session

import (
	"sync"
	"time"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
)

// StatusUpdate is pushed to websocket subscribers after every committed
// action so the capture UI can enable and disable its inputs.
type StatusUpdate struct {
	Key    engine.SectionKey   `json:"key"`
	Status *engine.RoundStatus `json:"status"`
}

// Session is one live capture session.
type Session struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	HandCode  string    `json:"handCode"`
	SetupText string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`

	lock        sync.Mutex
	state       *engine.EngineState
	subscribers map[chan StatusUpdate]struct{}
}

func (s *Session) subscribe() chan StatusUpdate {
	s.lock.Lock()
	defer s.lock.Unlock()
	ch := make(chan StatusUpdate, 8)
	if s.subscribers == nil {
		s.subscribers = make(map[chan StatusUpdate]struct{})
	}
	s.subscribers[ch] = struct{}{}
	return ch
}

func (s *Session) unsubscribe(ch chan StatusUpdate) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.subscribers, ch)
	close(ch)
}

// publish must be called with s.lock held. Slow subscribers miss updates
// instead of blocking the committing request.
func (s *Session) publish(update StatusUpdate) {
	for ch := range s.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}
