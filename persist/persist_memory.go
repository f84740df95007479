package persist

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type MemorySessionTracker struct {
	activeSessions map[string][]byte
}

func NewMemorySessionTracker() *MemorySessionTracker {
	return &MemorySessionTracker{
		activeSessions: make(map[string][]byte),
	}
}

func (m *MemorySessionTracker) Load(sessionCode string) (*engine.EngineState, error) {
	stateBytes, ok := m.activeSessions[sessionCode]
	if !ok {
		return nil, fmt.Errorf("Session state for Key: %s is not found", sessionCode)
	}
	state := &engine.EngineState{}
	err := json.Unmarshal(stateBytes, state)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (m *MemorySessionTracker) Save(sessionCode string, state *engine.EngineState) error {
	stateInBytes, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.activeSessions[sessionCode] = stateInBytes
	return nil
}

func (m *MemorySessionTracker) Remove(sessionCode string) error {
	delete(m.activeSessions, sessionCode)
	return nil
}
