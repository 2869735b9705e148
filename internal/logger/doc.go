// Package logger wraps zap for the alert monitor:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and runtime level changes,
//   - leveled helpers (Infof, DebugKV, ErrorKV, ...).
//
// Components receive a context and take their logger from it, so every
// hosted service logs under its own name.
package logger
