// Package logging provides structured logging for the VegeHub driver.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the driver. Logging is silent by default so that
// CLI output stays clean; set VEGEHUB_LOG_LEVEL to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (per-request exchanges, retry attempts)
//   - Info: Normal operations (setup completed, hubs discovered)
//   - Warn: Non-fatal issues (device-rejected writes, retries exhausted)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("device setup complete",
//	    zap.String("device", "192.168.0.100"),
//	    zap.String("server", "http://10.0.0.2:8123"),
//	)
//
// # Configuration
//
// Initialize logging at program startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
