package loader

import (
	"os"
	"path/filepath"
	"testing"

	"horao/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeTier = `
version: "1"
networks:
  - name: fabric-a
    type: data
    switches:
      - serial_number: SW-CORE
        name: core-1
        role: core
        layer: layer3
        lan_ports:
          - {serial_number: C-1, name: eth1, speed_gb: 400}
      - serial_number: SW-DIST
        name: dist-1
        role: distribution
        layer: layer3
        lan_ports:
          - {serial_number: D-1, name: eth1}
        uplink_ports:
          - {serial_number: D-2, name: eth2, status: degraded}
      - serial_number: SW-ACC
        name: access-1
        role: access
        management: unmanaged
        uplink_ports:
          - {serial_number: A-1, name: eth1}
    links:
      - {left: A-1, right: D-1}
      - {left: D-2, right: C-1}
  - name: oob
    type: management
    routers:
      - serial_number: RT-1
        role: edge
        lan_ports:
          - {mac: "02:00:00:00:00:01"}
    firewalls:
      - serial_number: FW-1
        wan_ports:
          - {serial_number: FW-P1}
    links:
      - {left: "02:00:00:00:00:01", right: FW-P1}
`

func TestParseYAML(t *testing.T) {
	networks, err := ParseYAML([]byte(threeTier))
	require.NoError(t, err)
	require.Len(t, networks, 2)

	fabric := networks[0]
	assert.Equal(t, "fabric-a", fabric.Name())
	assert.Equal(t, domain.NetworkData, fabric.Type())
	assert.Equal(t, domain.TopologyFatTree, fabric.Topology())

	inv := fabric.Snapshot()
	require.Len(t, inv.Switches, 3)
	assert.Equal(t, domain.SwitchCore, inv.Switches[0].Role)
	assert.Equal(t, domain.StatusUp, inv.Switches[0].Status)
	assert.Equal(t, int64(400), inv.Switches[0].LANPorts[0].SpeedGb)
	assert.Equal(t, domain.Layer2, inv.Switches[2].Layer)
	assert.Equal(t, domain.Unmanaged, inv.Switches[2].Management)
	assert.Equal(t, domain.Managed, inv.Switches[1].Management)

	// links carry the resolved ports, health included
	require.Len(t, inv.Links, 2)
	assert.Equal(t, "eth2", inv.Links[1].Left.Name)
	assert.Equal(t, domain.StatusDegraded, inv.Links[1].Status())
	assert.False(t, inv.Links[1].IsUp())

	oob := networks[1]
	assert.Equal(t, domain.NetworkManagement, oob.Type())
	c := oob.Classification()
	assert.Empty(t, c.Anomalies)
	assert.Equal(t, 1, c.Stats.Links)
	// a router and a firewall are not a fabric
	assert.Equal(t, domain.TopologyUndefined, c.Topology)
}

func TestParseYAML_DanglingReference(t *testing.T) {
	data := `
networks:
  - name: lab
    type: control
    switches:
      - serial_number: S1
        lan_ports: [{serial_number: P1}]
      - serial_number: S2
        lan_ports: [{serial_number: P2}]
    links:
      - {left: P1, right: P2}
      - {left: P1, right: NOPE}
`
	networks, err := ParseYAML([]byte(data))
	require.NoError(t, err)
	require.Len(t, networks, 1)

	c := networks[0].Classification()
	assert.Equal(t, domain.TopologyTree, c.Topology)
	require.Len(t, c.Anomalies, 1)
	assert.ErrorIs(t, c.Anomalies[0], domain.ErrDanglingPortReference)
}

func TestParseYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "malformed",
			data: "networks: [",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			data: "networks:\n  - type: data\n",
			want: "networks[0].name: field is required",
		},
		{
			name: "unknown type",
			data: "networks:\n  - name: x\n    type: storage\n",
			want: `networks[0].type: must be one of`,
		},
		{
			name: "unknown switch role",
			data: "networks:\n  - name: x\n    type: data\n    switches:\n      - {serial_number: S1, role: spine}\n",
			want: "networks[0].switches[0].role",
		},
		{
			name: "missing device serial",
			data: "networks:\n  - name: x\n    type: data\n    routers:\n      - {name: r1}\n",
			want: "serial_number: field is required",
		},
		{
			name: "unknown status",
			data: "networks:\n  - name: x\n    type: data\n    firewalls:\n      - {serial_number: F1, status: flapping}\n",
			want: "status: must be one of",
		},
		{
			name: "anonymous port",
			data: "networks:\n  - name: x\n    type: data\n    switches:\n      - serial_number: S1\n        lan_ports: [{name: eth0}]\n",
			want: "lan_ports[0].serial_number: field is required",
		},
		{
			name: "bad mac",
			data: "networks:\n  - name: x\n    type: data\n    switches:\n      - serial_number: S1\n        lan_ports: [{mac: nope}]\n",
			want: "invalid MAC address",
		},
		{
			name: "link without right end",
			data: "networks:\n  - name: x\n    type: data\n    links:\n      - {left: P1}\n",
			want: "networks[0].links[0].right: field is required",
		},
		{
			name: "duplicate network",
			data: "networks:\n  - {name: x, type: data}\n  - {name: x, type: control}\n",
			want: `duplicate network "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(threeTier), 0644))

	networks, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, networks, 2)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExportYAML_RoundTrip(t *testing.T) {
	networks, err := ParseYAML([]byte(threeTier))
	require.NoError(t, err)

	data, err := ExportYAML(networks)
	require.NoError(t, err)

	again, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, again, len(networks))

	for i := range networks {
		assert.Equal(t, networks[i].Record(), again[i].Record())
	}
}
