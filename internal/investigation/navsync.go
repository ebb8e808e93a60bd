package investigation

// Navigator is the port through which the store reports navigation side
// effects to the host page. Start and drill-down push a new location so the
// back button returns to the prior context; breadcrumb navigation and
// completion replace the current location so back-history does not grow.
type Navigator interface {
	Push(location string)
	Replace(location string)
}

// NopNavigator discards navigation requests. Used by the CLI and in tests.
type NopNavigator struct{}

func (NopNavigator) Push(string)    {}
func (NopNavigator) Replace(string) {}

// SyncLocation reconciles the store with the host page's location,
// independently of the store's own navigation requests. It implements the
// back-button contract:
//
//   - A location naming an investigation the store already shows is a no-op.
//   - A location naming an investigation found in history makes it current
//     without re-pushing, avoiding a navigation loop.
//   - A decodable location not found in history starts a fresh deep-linked
//     investigation, again without pushing.
//   - A location off the investigation route while a session is active
//     completes the session so the panel collapses instead of going stale.
//     The host is already at the new location, so no replace is requested.
//
// The returned bool reports whether an investigation is current afterwards.
func (s *Store) SyncLocation(location string) (Context, bool, error) {
	cfg := DecodeLocation(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg == nil {
		if s.active {
			s.completeLocked(false)
		}
		return Context{}, false, nil
	}

	if s.current != nil && cfg.ID != "" && s.current.ID == cfg.ID {
		return s.current.Clone(), true, nil
	}

	if cfg.ID != "" {
		if target, ok := s.lookupLocked(cfg.ID); ok {
			c := target.Clone()
			s.current = &c
			s.active = true
			s.panel.Open = true
			s.recent = prependContext(s.recent, c, RecentLimit)
			return c.Clone(), true, nil
		}
	}

	c, err := s.startLocked(*cfg, false)
	if err != nil {
		return Context{}, false, err
	}
	return c, true, nil
}
