// Package logging builds the zap loggers shared by the server, the stores and
// the sandbox runtime.
//
// Production output is JSON on stdout; LOG_DEV switches to colored console
// output. Components take a *Logger and derive a named child:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	storeLog := logger.Named("store")
//	storeLog.Warn("circuit breaker state changed", zap.String("to", "open"))
package logging
