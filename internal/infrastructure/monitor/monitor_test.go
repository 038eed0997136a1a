package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type probe struct{ err error }

func (p *probe) check(context.Context) error { return p.err }

func TestMonitor_Refresh(t *testing.T) {
	store := &probe{}
	kafka := &probe{err: errors.New("no brokers")}
	m := New(0, nil,
		Check{Name: ComponentStore, Required: true, Probe: store.check},
		Check{Name: ComponentKafka, Probe: kafka.check},
	)

	assert.False(t, m.IsOnline(), "nothing probed yet")

	m.Refresh()
	assert.True(t, m.IsOnline())
	assert.True(t, m.Healthy(), "optional components do not affect health")

	status := m.GetStatus()
	assert.False(t, status.Components[ComponentKafka].Online)
	assert.Equal(t, "no brokers", status.Components[ComponentKafka].Error)
	assert.False(t, status.LastCheck.IsZero())

	store.err = errors.New("disk gone")
	m.Refresh()
	assert.False(t, m.IsOnline())
	assert.False(t, m.Healthy())
}

func TestMonitor_StatusIsACopy(t *testing.T) {
	m := New(0, nil, Check{Name: ComponentStore, Required: true, Probe: (&probe{}).check})
	m.Refresh()

	status := m.GetStatus()
	delete(status.Components, ComponentStore)
	assert.True(t, m.IsOnline())
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := New(0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
