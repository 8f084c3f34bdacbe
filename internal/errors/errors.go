package errors

import (
	"errors"
	"fmt"
)

// Exit codes for fleetctl
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInstanceNotFound = 2
	ExitConflict         = 3
	ExitPortAllocation   = 4
	ExitComposeFailed    = 5
	ExitConfigError      = 6
	ExitRegistryCorrupt  = 7
	ExitSSHError         = 8
	ExitArchiveFailed    = 9
	ExitRemoteStart      = 10
)

// FleetError is the base error type for fleetctl
type FleetError struct {
	Code    int
	Message string
	Cause   error
}

func (e *FleetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FleetError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *FleetError) ExitCode() int {
	return e.Code
}

// New creates a new FleetError
func New(code int, message string) *FleetError {
	return &FleetError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a FleetError
func Wrap(code int, message string, cause error) *FleetError {
	return &FleetError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InstanceNotFound returns an error for a missing instance
func InstanceNotFound(name string) *FleetError {
	return New(ExitInstanceNotFound, fmt.Sprintf("Instance '%s' not found", name))
}

// InstanceExists returns an error for a duplicate instance name
func InstanceExists(name string) *FleetError {
	return New(ExitConflict, fmt.Sprintf("Instance '%s' already exists", name))
}

// PortConflict returns an error for an explicitly requested port that is taken
func PortConflict(port int) *FleetError {
	return New(ExitConflict, fmt.Sprintf("Port %d already assigned", port))
}

// PortAllocationFailed returns an error for auto-allocation failure
func PortAllocationFailed(cause error) *FleetError {
	return Wrap(ExitPortAllocation, "failed to allocate port", cause)
}

// ComposeFailed returns an error for container-control operations
func ComposeFailed(op string, cause error) *FleetError {
	return Wrap(ExitComposeFailed, fmt.Sprintf("compose %s failed", op), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *FleetError {
	return Wrap(ExitConfigError, message, cause)
}

// RegistryCorrupt returns a fatal error for an unreadable registry document.
// The registry is never silently reset.
func RegistryCorrupt(path string, cause error) *FleetError {
	return Wrap(ExitRegistryCorrupt, fmt.Sprintf("registry %s is unreadable", path), cause)
}

// RegistryConflict returns an error when a concurrent writer moved the
// registry revision during a read-modify-write cycle.
func RegistryConflict(expected, found int64) *FleetError {
	return New(ExitConflict, fmt.Sprintf("registry modified concurrently (revision %d, expected %d); retry the operation", found, expected))
}

// SSHError returns an error for SSH operations
func SSHError(message string, cause error) *FleetError {
	return Wrap(ExitSSHError, message, cause)
}

// ArchiveFailed returns an error for archive creation or verification
func ArchiveFailed(message string, cause error) *FleetError {
	return Wrap(ExitArchiveFailed, message, cause)
}

// RemoteStartFailed marks the synced-but-not-running state: the instance tree
// was pushed to the remote host but the remote compose start did not succeed.
func RemoteStartFailed(name, host string, cause error) *FleetError {
	return Wrap(ExitRemoteStart,
		fmt.Sprintf("instance %s synced to %s but remote start failed; instance is registered but not running", name, host),
		cause)
}

// InstanceNotRunning returns an error when an instance exists but is not running
func InstanceNotRunning(name string) *FleetError {
	return New(ExitGeneralError, fmt.Sprintf("instance %s is not running", name))
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *FleetError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
