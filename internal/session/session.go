// Package session preserves per-target editing state across target switches.
package session

import (
	img "defectpaste/internal/image"
	"defectpaste/internal/scene"
)

// Session caches a scene snapshot per target image so switching between
// targets and back restores placements, sliders, and paint strokes exactly.
type Session struct {
	scenes map[string]*scene.Scene
	active string
}

// New returns an empty session.
func New() *Session {
	return &Session{scenes: make(map[string]*scene.Scene)}
}

// Active returns the id of the current target, or "".
func (s *Session) Active() string { return s.active }

// Targets returns the ids with saved state.
func (s *Session) Targets() []string {
	out := make([]string, 0, len(s.scenes))
	for id := range s.scenes {
		out = append(out, id)
	}
	return out
}

// Save stores a snapshot of the scene under the target id. The snapshot is
// decoupled from further edits: placements and the paint layer are copied,
// pixel buffers shared.
func (s *Session) Save(id string, sc *scene.Scene) {
	if sc == nil {
		return
	}
	s.scenes[id] = sc.Snapshot()
}

// Load returns the working scene for a target: a copy of the saved snapshot
// when one exists, or a fresh scene over base otherwise. The target becomes
// active.
func (s *Session) Load(id string, base *img.Buffer) (*scene.Scene, error) {
	s.active = id
	if saved, ok := s.scenes[id]; ok {
		return saved.Snapshot(), nil
	}
	return scene.New(base)
}

// Has reports whether the target has saved state.
func (s *Session) Has(id string) bool {
	_, ok := s.scenes[id]
	return ok
}

// Discard drops the saved state for a target.
func (s *Session) Discard(id string) {
	delete(s.scenes, id)
	if s.active == id {
		s.active = ""
	}
}

// Reset drops all saved state.
func (s *Session) Reset() {
	s.scenes = make(map[string]*scene.Scene)
	s.active = ""
}
