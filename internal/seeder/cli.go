package seeder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/obesiscope/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to stdout and, when logFile is not empty,
// to that file as well.
func SetupLogging(stdout io.Writer, logFile string) error {
	if logFile == "" {
		if err := logger.InitWithWriter(stdout); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(stdout, file)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// DefaultOutputFile names the request dump after the current time.
func DefaultOutputFile(now time.Time) string {
	return "generated_requests_" + now.Format("20060102_150405") + ".json"
}
