// Package errors provides typed errors with exit codes for fleetctl.
//
// FleetError is the base error type that wraps an error with an exit code:
//
//	type FleetError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// Use the provided constructors for consistent error creation:
//
//	errors.InstanceNotFound("alpha")
//	errors.PortConflict(18790)
//	errors.ComposeFailed("start", err)
//	errors.RemoteStartFailed("alpha", "bots.example.net", err)
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
