// Package mockdice provides a dice.Source with predetermined faces for tests.
package mockdice

import "sync"

// ScriptedSource implements dice.Source by replaying queued die faces. Faces
// are 1-based, as they appear on the die; a face larger than the die being
// rolled is capped at its maximum. Once the queue is exhausted every roll
// yields the fallback face.
type ScriptedSource struct {
	mu       sync.Mutex
	faces    []int
	next     int
	fallback int
	calls    int
}

// NewScriptedSource creates a source that replays faces and then rolls 1s.
func NewScriptedSource(faces ...int) *ScriptedSource {
	return &ScriptedSource{faces: append([]int(nil), faces...), fallback: 1}
}

// Always creates a source that rolls face on every die.
func Always(face int) *ScriptedSource {
	return &ScriptedSource{fallback: face}
}

// Push appends faces to the queue.
func (s *ScriptedSource) Push(faces ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = append(s.faces, faces...)
}

// SetFallback sets the face rolled once the queue is empty.
func (s *ScriptedSource) SetFallback(face int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = face
}

// Calls returns how many dice have been rolled.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Remaining returns how many queued faces have not been consumed.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.next
}

// Intn implements dice.Source.
func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	face := s.fallback
	if s.next < len(s.faces) {
		face = s.faces[s.next]
		s.next++
	}
	switch {
	case face < 1:
		return 0
	case face > n:
		return n - 1
	}
	return face - 1
}
