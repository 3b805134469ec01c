package utils

import (
	"io"

	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// MustClose closes c and logs the outcome under name.
func MustClose(name string, c io.Closer, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
		return
	}
	log.Debug("closed cleanly", logger.String("resource", name))
}
