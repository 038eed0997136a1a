package monitor

import "time"

type ComponentStatus struct {
	Online    bool      `json:"online"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// Status is the latest probe result of every registered component.
type Status struct {
	Components map[string]ComponentStatus `json:"components"`
	LastCheck  time.Time                  `json:"last_check"`
}

// Online reports whether the named component passed its last probe.
func (s Status) Online(name string) bool {
	c, ok := s.Components[name]
	return ok && c.Online
}

// Healthy reports whether every required component is online.
func (s Status) Healthy(required []string) bool {
	for _, name := range required {
		if !s.Online(name) {
			return false
		}
	}
	return true
}
