package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestParseDeviceStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    DeviceStatus
		wantErr bool
	}{
		{"up", StatusUp, false},
		{"down", StatusDown, false},
		{"degraded", StatusDegraded, false},
		{"UP", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeviceStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceStatus_Predicates(t *testing.T) {
	assert.True(t, StatusUp.IsUp())
	assert.False(t, StatusDegraded.IsUp())
	assert.True(t, StatusDegraded.IsOperational())
	assert.False(t, StatusDown.IsOperational())
	assert.False(t, DeviceStatus("flapping").IsOperational())
	assert.False(t, DeviceStatus("flapping").Valid())
}

var anyStatus = gen.OneConstOf(StatusUp, StatusDown, StatusDegraded)

func TestLink_HealthProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("link is up iff both ports are up", prop.ForAll(
		func(left, right DeviceStatus) bool {
			l := NewLink(Port{SerialNumber: "a", Status: left}, Port{SerialNumber: "b", Status: right})
			return l.IsUp() == (left == StatusUp && right == StatusUp)
		},
		anyStatus, anyStatus,
	))

	properties.Property("link status is its worst endpoint", prop.ForAll(
		func(left, right DeviceStatus) bool {
			l := NewLink(Port{SerialNumber: "a", Status: left}, Port{SerialNumber: "b", Status: right})
			switch {
			case left == StatusDown || right == StatusDown:
				return l.Status() == StatusDown
			case left == StatusDegraded || right == StatusDegraded:
				return l.Status() == StatusDegraded
			default:
				return l.Status() == StatusUp
			}
		},
		anyStatus, anyStatus,
	))

	properties.Property("operational iff neither end is down", prop.ForAll(
		func(left, right DeviceStatus) bool {
			l := NewLink(Port{SerialNumber: "a", Status: left}, Port{SerialNumber: "b", Status: right})
			return l.IsOperational() == (left != StatusDown && right != StatusDown)
		},
		anyStatus, anyStatus,
	))

	properties.TestingRun(t)
}

func TestLink_IsUpTruthTable(t *testing.T) {
	statuses := []DeviceStatus{StatusUp, StatusDown, StatusDegraded}
	for _, left := range statuses {
		for _, right := range statuses {
			t.Run(string(left)+"/"+string(right), func(t *testing.T) {
				l := NewLink(Port{Status: left}, Port{Status: right})
				assert.Equal(t, left == StatusUp && right == StatusUp, l.IsUp())
			})
		}
	}
}

func TestLink_Key(t *testing.T) {
	a := Port{SerialNumber: "P-1"}
	b := Port{SerialNumber: "P-2"}
	c := Port{MAC: "aa:bb:cc:dd:ee:ff"}

	assert.Equal(t, NewLink(a, b).Key(), NewLink(b, a).Key())
	assert.NotEqual(t, NewLink(a, b).Key(), NewLink(a, c).Key())
	assert.Len(t, NewLink(a, b).Key(), 16)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", c.Key())

	l := NewLink(b, a)
	l.Normalize()
	assert.Equal(t, "P-1", l.Left.SerialNumber)
	assert.True(t, l.Involves("P-2"))
	assert.False(t, l.Involves("P-3"))
}

func TestPort_WithStatus(t *testing.T) {
	p := Port{SerialNumber: "P-1", Status: StatusUp}
	down := p.WithStatus(StatusDown)

	assert.True(t, p.IsUp())
	assert.False(t, down.IsUp())
	assert.Equal(t, p.SerialNumber, down.SerialNumber)
}

func TestSwitchRole_Tier(t *testing.T) {
	tier, ok := SwitchDistribution.Tier()
	assert.True(t, ok)
	assert.Equal(t, 1, tier)

	_, ok = SwitchRole("spine").Tier()
	assert.False(t, ok)
}

func TestTopology_Family(t *testing.T) {
	tests := map[NetworkTopology]TopologyFamily{
		TopologyTree:          FamilyTree,
		TopologyVL2:           FamilyClos,
		TopologyHedera:        FamilyFatTree,
		TopologyFiConn:        FamilyRecursive,
		TopologyHelios:        FamilyFlexible,
		TopologyDragonFlyPlus: FamilyDragonFly,
		TopologyUndefined:     FamilyUndefined,
	}
	for topo, want := range tests {
		assert.Equal(t, want, topo.Family(), string(topo))
	}

	for _, topo := range AllTopologies {
		parsed, err := ParseNetworkTopology(string(topo))
		assert.NoError(t, err)
		assert.Equal(t, topo, parsed)
	}
	_, err := ParseNetworkTopology("torus")
	assert.Error(t, err)
}
