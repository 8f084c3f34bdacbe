// Package tui provides terminal user interface components for fleetctl.
//
// This package uses the Bubble Tea framework. Its single component is the
// destroy confirmation prompt, which requires the operator to retype the
// instance name before teardown proceeds:
//
//	confirmed, err := tui.ConfirmDestroy("alpha", []string{"port 18789"})
//	if confirmed {
//	    // proceed with teardown
//	}
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
