package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// instanceNameRegex validates instance names.
// Names must start with a lowercase letter or digit, followed by lowercase
// letters, digits, underscores, or hyphens. Maximum length is 63 characters
// (common container name limit).
var instanceNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ValidateInstanceName checks if an instance name is valid.
// Valid names:
//   - Start with a lowercase letter or digit
//   - Contain only lowercase letters, digits, underscores, or hyphens
//   - Are between 1 and 63 characters long
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if !instanceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid instance name %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, underscores, or hyphens, and be at most 63 characters", name)
	}

	return nil
}

const (
	// DefaultBasePort is the first port considered by auto-assignment.
	DefaultBasePort = 18789

	// DefaultAppPort is the port the hosted service listens on inside its container.
	DefaultAppPort = 8080

	// DefaultImage is the compose image when the config does not override it.
	DefaultImage = "fleet-app:latest"

	// DefaultRemoteRoot is where remote deployments land when no path is given.
	DefaultRemoteRoot = "/opt/fleetctl"

	// ContainerPrefix is prepended to instance names to form container names.
	ContainerPrefix = "fleet-"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "FLEETCTL_CONFIG"
)

// HostConfig is the operator configuration, read from config.toml.
// Every field is optional; zero values fall back to defaults.
type HostConfig struct {
	FleetRoot   string `toml:"fleet_root"`
	BasePort    int    `toml:"base_port"`
	AppPort     int    `toml:"app_port"`
	Image       string `toml:"image"`
	RemoteRoot  string `toml:"remote_root"`
	ManagedHost string `toml:"managed_host"` // SSH destination whose docker engine holds snapshot targets
	ManagedUser string `toml:"managed_user"`
}

// Validate checks that the HostConfig is usable.
func (c *HostConfig) Validate() error {
	if c.BasePort < 1024 || c.BasePort > 65000 {
		return fmt.Errorf("base_port %d out of range (1024-65000)", c.BasePort)
	}
	if !filepath.IsAbs(c.FleetRoot) {
		return fmt.Errorf("fleet_root must be an absolute path (got %q)", c.FleetRoot)
	}
	if c.RemoteRoot != "" && !filepath.IsAbs(c.RemoteRoot) {
		return fmt.Errorf("remote_root must be an absolute path (got %q)", c.RemoteRoot)
	}
	return nil
}

// applyDefaults fills unset fields.
func (c *HostConfig) applyDefaults() error {
	if c.FleetRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		c.FleetRoot = filepath.Join(home, ".fleetctl")
	}
	if c.BasePort == 0 {
		c.BasePort = DefaultBasePort
	}
	if c.AppPort == 0 {
		c.AppPort = DefaultAppPort
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.RemoteRoot == "" {
		c.RemoteRoot = DefaultRemoteRoot
	}
	return nil
}

// DefaultHostConfig returns a HostConfig with every field at its default.
func DefaultHostConfig() (*HostConfig, error) {
	var config HostConfig
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ConfigPath returns the config file location: $FLEETCTL_CONFIG if set,
// otherwise ~/.config/fleetctl/config.toml.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fleetctl", "config.toml"), nil
}

// LoadHostConfig loads the operator configuration. A missing config file is
// not an error; defaults apply. A malformed file is.
func LoadHostConfig() (*HostConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadHostConfigFile(path)
}

// LoadHostConfigFile loads the operator configuration from an explicit path.
func LoadHostConfigFile(path string) (*HostConfig, error) {
	var config HostConfig

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// Paths holds the directory layout under the fleet root.
type Paths struct {
	FleetRoot    string
	InstancesDir string
	TemplatesDir string
	ArchivesDir  string
	SnapshotsDir string
	StagingDir   string
	StateDir     string
	RegistryPath string
}

// NewPaths derives the directory layout from a fleet root.
func NewPaths(fleetRoot string) *Paths {
	return &Paths{
		FleetRoot:    fleetRoot,
		InstancesDir: filepath.Join(fleetRoot, "instances"),
		TemplatesDir: filepath.Join(fleetRoot, "templates"),
		ArchivesDir:  filepath.Join(fleetRoot, "archives"),
		SnapshotsDir: filepath.Join(fleetRoot, "snapshots"),
		StagingDir:   filepath.Join(fleetRoot, "staging"),
		StateDir:     filepath.Join(fleetRoot, "state"),
		RegistryPath: filepath.Join(fleetRoot, "instances.json"),
	}
}

// InstanceDir returns the directory owned by one instance. The name is joined
// with SecureJoin so a crafted name cannot escape the instances root.
func (p *Paths) InstanceDir(name string) (string, error) {
	if err := ValidateInstanceName(name); err != nil {
		return "", err
	}
	return securejoin.SecureJoin(p.InstancesDir, name)
}

// ContainerName returns the container name derived from an instance name.
func ContainerName(name string) string {
	return ContainerPrefix + name
}
