package logging

import (
	log "github.com/sirupsen/logrus"
)

// Setup switches the global logrus logger to JSON output at the given level.
// Unknown levels fall back to info.
func Setup(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
