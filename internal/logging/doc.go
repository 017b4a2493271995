// Package logging provides structured logging for stepsched.
//
// It wraps Go's log/slog with a JSON handler. Logs go to stderr by default,
// or to {dir}/stepsched.log when a log directory is configured, in which
// case the file can be rotated by size.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLogger := logger.WithSource("steps.txt").With("workers", 5)
//	runLogger.Debug("step dispatched", "step", "C", "deadline", 63)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"step dispatched","source":"steps.txt","workers":5,"step":"C","deadline":63}
//
// # Rotation
//
//	logger, err := logging.NewLoggerWithRotation(dir, "DEBUG", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	})
//
// All types in this package are safe for concurrent use; child loggers share
// the parent's writer.
package logging
