package instance

// CreateOptions controls scaffolding of a new instance.
type CreateOptions struct {
	Name string

	// Port pins the host port. Zero means auto-assign from the base port.
	Port int

	// SSHHost and SSHUser place the instance on a remote host.
	SSHHost string
	SSHUser string

	// RemotePath overrides the remote project directory for the initial
	// deployment. Empty means <remote_root>/<name>.
	RemotePath string

	// ChannelExport is an optional channel-discovery export (JSON array)
	// seeded into the instance's configuration directory.
	ChannelExport []byte
}

// DestroyOptions controls instance teardown.
type DestroyOptions struct {
	// Archive packs the instance directory into the archives directory
	// before anything is deleted.
	Archive bool
}
