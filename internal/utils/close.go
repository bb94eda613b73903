package utils

import (
	"io"

	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

// MustClose closes c and logs any error under what.
// Use for defer statements and shutdown paths where a close error is not fatal.
func MustClose(c io.Closer, log logger.Logger, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
		return
	}
	log.Debug("closed", logger.String("resource", what))
}
