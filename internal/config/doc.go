// Package config provides the fleetctl configuration model.
//
// Operator configuration is a single TOML file (default
// ~/.config/fleetctl/config.toml, overridable via FLEETCTL_CONFIG):
//
//	fleet_root   = "/var/lib/fleetctl"
//	base_port    = 18789
//	image        = "fleet-app:latest"
//	remote_root  = "/opt/fleetctl"
//	managed_host = "bots.example.net"
//	managed_user = "ops"
//
// All fields are optional. The fleet root anchors the on-disk layout:
//
//	<root>/instances.json    registry document
//	<root>/instances/<name>  one directory per instance
//	<root>/templates/        static artifacts copied into new instances
//	<root>/archives/         destroy-time backups
//	<root>/snapshots/        live-state backups
//	<root>/staging/          transient snapshot staging
//	<root>/state/            audit event logs
//
// Instance names double as path components and container name suffixes, so
// they are validated against a restricted character set and joined with
// SecureJoin before touching the filesystem.
package config
