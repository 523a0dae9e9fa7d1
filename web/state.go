package web

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/config"
	"github.com/mogaika/skelanim/fixture"
)

// State is the fixture the server answers from. SetFixture swaps it
// atomically, so a reload never leaves handlers with a half-updated view.
type State struct {
	mu   sync.RWMutex
	fix  *fixture.Fixture
	skel *anm.ReferencePose

	cfg  config.Config
	opts export.Options
	log  *log.Logger
}

func NewState(f *fixture.Fixture, cfg config.Config, l *log.Logger) (*State, error) {
	s := &State{cfg: cfg, opts: cfg.ExportOptions(l), log: l}
	if err := s.SetFixture(f); err != nil {
		return nil, err
	}
	return s, nil
}

// SetFixture replaces the served fixture. An invalid skeleton keeps the old one.
func (s *State) SetFixture(f *fixture.Fixture) error {
	skel, err := f.ReferencePose()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.fix, s.skel = f, skel
	s.mu.Unlock()
	return nil
}

// Reload is a fixture.Watch callback.
func (s *State) Reload(f *fixture.Fixture) {
	if err := s.SetFixture(f); err != nil && s.log != nil {
		s.log.Warn("Reloaded fixture rejected", "err", err)
	}
}

func (s *State) current() (*fixture.Fixture, *anm.ReferencePose) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fix, s.skel
}
