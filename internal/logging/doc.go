// Package logging provides structured logging with per-module log level configuration.
//
// Loggers are plain *slog.Logger values tagged with a "module" attribute.
// Output goes to stdout (text or JSON) and, when journald is reachable, to the
// systemd journal under the "switchlight" identifier.
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"light":  "debug",
//			"script": "warn",
//		},
//	})
//
// Then fetch a module logger:
//
//	logger := logging.GetLogger("light")
//	logger.Debug("Entered state", "state", "flashing_green")
//
// Loggers obtained before Initialize are reconfigured in place, so package
// level loggers are safe.
//
// Viewing journal output:
//
//	journalctl -t switchlight -f
//	journalctl -t switchlight MODULE=light
package logging
