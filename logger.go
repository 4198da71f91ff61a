package udpchat

import (
	"bytes"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
)

var logger *golog.Logger

func init() {
	// Set a default null logger
	var b bytes.Buffer
	logger = golog.New(&b, log.Debug)
}

// SetLogger sets the package logging output
func SetLogger(l *golog.Logger) {
	logger = l
}
