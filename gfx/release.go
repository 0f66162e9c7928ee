// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "sync"

// ReleaseStack releases what was pushed onto it in reverse
// order, so objects go away before the objects they were
// created from.
type ReleaseStack struct {
	mu    sync.Mutex
	items []Releasable
}

// Push adds r to the top of the stack.
func (s *ReleaseStack) Push(r Releasable) {
	s.mu.Lock()
	s.items = append(s.items, r)
	s.mu.Unlock()
}

// PushFunc adds f to the top of the stack.
func (s *ReleaseStack) PushFunc(f func()) {
	s.Push(ReleaseFunc(f))
}

// Len returns the number of items waiting to be released.
func (s *ReleaseStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Release releases everything, last pushed first, and
// leaves the stack empty for reuse.
func (s *ReleaseStack) Release() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Release()
	}
}
