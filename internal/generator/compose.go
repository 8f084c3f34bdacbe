package generator

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lanekit/fleetctl/internal/config"
)

// ComposeConfig holds everything needed to render one instance's
// docker-compose descriptor.
type ComposeConfig struct {
	Name    string // instance name
	Port    int    // host port bound to the service
	AppPort int    // port the service listens on inside the container
	Image   string
}

// composeFile mirrors the subset of the compose schema we emit.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name"`
	Restart       string            `yaml:"restart"`
	Ports         []string          `yaml:"ports"`
	Volumes       []string          `yaml:"volumes"`
	Environment   map[string]string `yaml:"environment,omitempty"`
}

// ComposeDescriptor renders the docker-compose.yml for an instance. The host
// port binding is localhost-only; health probes and any published surface go
// through it.
func ComposeDescriptor(cfg *ComposeConfig) ([]byte, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("instance name is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}

	appPort := cfg.AppPort
	if appPort == 0 {
		appPort = config.DefaultAppPort
	}
	image := cfg.Image
	if image == "" {
		image = config.DefaultImage
	}

	doc := composeFile{
		Services: map[string]composeService{
			"app": {
				Image:         image,
				ContainerName: config.ContainerName(cfg.Name),
				Restart:       "unless-stopped",
				Ports: []string{
					fmt.Sprintf("127.0.0.1:%d:%d", cfg.Port, appPort),
				},
				Volumes: []string{
					"./workspace:/app/workspace",
					"./data:/app/data",
				},
				Environment: map[string]string{
					"INSTANCE_NAME": cfg.Name,
					"PORT":          fmt.Sprintf("%d", appPort),
				},
			},
		},
	}

	return yaml.Marshal(&doc)
}
