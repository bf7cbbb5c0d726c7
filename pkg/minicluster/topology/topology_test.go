package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTopology = `
zookeepers:
  - container: peloton-zk
    client_port: 2181
apps:
  - name: resmgr
    container: peloton-resmgr
    port: 5290
  - name: jobmgr
    container: peloton-jobmgr
    port: 5292
    health_path: /ready
`

func TestParse(t *testing.T) {
	t.Parallel()

	topo, err := Parse([]byte(sampleTopology))
	require.NoError(t, err)

	require.Len(t, topo.ZooKeepers, 1)
	assert.Equal(t, "peloton-zk", topo.ZooKeepers[0].Container)
	assert.Equal(t, 2181, topo.ZooKeepers[0].ClientPort)

	require.Len(t, topo.Apps, 2)
	assert.Equal(t, "resmgr", topo.Apps[0].Name)
	assert.Empty(t, topo.Apps[0].HealthPath)
	assert.Equal(t, "/ready", topo.Apps[1].HealthPath)

	assert.Equal(t, []string{"peloton-resmgr", "peloton-jobmgr", "peloton-zk"}, topo.Containers())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("apps:\n  - name: a\n    container: c\n    port: 80\n    portt: 81\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding topology")
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		yaml string
	}{
		{name: "missing app name", yaml: "apps:\n  - container: c\n    port: 80\n"},
		{name: "missing container", yaml: "apps:\n  - name: a\n    port: 80\n"},
		{name: "port out of range", yaml: "apps:\n  - name: a\n    container: c\n    port: 70000\n"},
		{name: "zookeeper without client port", yaml: "zookeepers:\n  - container: zk\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validating topology")
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "minicluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTopology), 0o600))

	topo, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, topo.Apps, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
