// Package topology models the YAML file describing a local test cluster:
// which containers make it up, which ports they publish and where their
// health endpoints live. The CLI feeds it to the teardown and status
// commands so a whole cluster can be addressed in one invocation.
package topology

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// App is an application container with an HTTP health endpoint.
type App struct {
	Name      string `yaml:"name" validate:"required"`
	Container string `yaml:"container" validate:"required"`
	Port      int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	// HealthPath overrides the default /health path when set.
	HealthPath string `yaml:"health_path,omitempty"`
}

// ZooKeeper is a coordination-service container probed over its client port
// with the ruok liveness command rather than HTTP.
type ZooKeeper struct {
	Container  string `yaml:"container" validate:"required"`
	ClientPort int    `yaml:"client_port" validate:"required,gt=0,lte=65535"`
}

type Topology struct {
	Apps       []App       `yaml:"apps" validate:"dive"`
	ZooKeepers []ZooKeeper `yaml:"zookeepers" validate:"dive"`
}

func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	topo, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return topo, nil
}

func Parse(data []byte) (*Topology, error) {
	var topo Topology
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&topo); err != nil {
		return nil, fmt.Errorf("decoding topology: %w", err)
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&topo); err != nil {
		return nil, fmt.Errorf("validating topology: %w", err)
	}
	return &topo, nil
}

// Containers lists every container name in the topology, apps before
// coordination services. Teardown walks this order.
func (t *Topology) Containers() []string {
	names := make([]string, 0, len(t.Apps)+len(t.ZooKeepers))
	for _, app := range t.Apps {
		names = append(names, app.Container)
	}
	for _, zk := range t.ZooKeepers {
		names = append(names, zk.Container)
	}
	return names
}
