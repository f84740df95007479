// Package persist stores per-session engine state so a capture session
// survives a server restart. The engine never sees this layer; the session
// manager loads and saves around each engine call.
package persist

import (
	"github.com/KillerEXXD/hhcapture-sub002/engine"
)

// SessionStateTracker persists the engine state of one capture session,
// keyed by session code.
type SessionStateTracker interface {
	Load(sessionCode string) (*engine.EngineState, error)
	Save(sessionCode string, state *engine.EngineState) error
	Remove(sessionCode string) error
}
