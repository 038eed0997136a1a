package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Component names used across the service.
const (
	ComponentStore = "store"
	ComponentRedis = "redis"
	ComponentKafka = "kafka"
)

const (
	probeTimeout    = 3 * time.Second
	defaultInterval = 10 * time.Second
)

// Check probes one dependency. Required checks decide overall health.
type Check struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) error
}

type Monitor struct {
	checks []Check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, checks ...Check) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Components: map[string]ComponentStatus{}},
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the store passed its last probe.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Online(ComponentStore)
}

// Healthy reports whether every required check passed.
func (m *Monitor) Healthy() bool {
	return m.GetStatus().Healthy(m.required())
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Status{Components: make(map[string]ComponentStatus, len(m.status.Components)), LastCheck: m.status.LastCheck}
	for k, v := range m.status.Components {
		out.Components[k] = v
	}
	return out
}

func (m *Monitor) required() []string {
	var names []string
	for _, c := range m.checks {
		if c.Required {
			names = append(names, c.Name)
		}
	}
	return names
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and records the results.
func (m *Monitor) Refresh() {
	now := time.Now()
	status := Status{Components: make(map[string]ComponentStatus, len(m.checks)), LastCheck: now}
	previous := m.GetStatus()

	for _, c := range m.checks {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		err := c.Probe(ctx)
		cancel()

		cs := ComponentStatus{Online: err == nil, LastCheck: now}
		if err != nil {
			cs.Error = err.Error()
		}
		if was, seen := previous.Components[c.Name]; seen && was.Online != cs.Online {
			if cs.Online {
				m.logger.Info("component back online", zap.String("component", c.Name))
			} else {
				m.logger.Warn("component offline", zap.String("component", c.Name), zap.Error(err))
			}
		}
		status.Components[c.Name] = cs
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
