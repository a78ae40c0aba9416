// Package app wires the analytics server together and manages its lifecycle.
//
// # Initialization Flow
//
// NewApplication runs the following steps in order:
//
//  1. Load configuration (defaults, YAML file, ODI_* environment)
//  2. Initialize structured logging and OpenTelemetry
//  3. Create the dataset cache over the configured CSV sources
//  4. Build the dashboard and health services
//  5. Mount the middleware chain and the /api and /metrics routes
//
// # Usage
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout.
package app
