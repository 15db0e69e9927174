package middleware

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"booksweep/structs"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger sends logrus output to stdout and a rotated log file.
func SetupLogger(cfg structs.LogConfig) (io.Closer, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", cfg.Dir, err)
	}

	// Configure log rotation with lumberjack
	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, cfg.File),
		MaxSize:    100,  // MB
		MaxBackups: 7,    // Keep 7 old log files
		MaxAge:     30,   // Days
		Compress:   true, // Compress old log files
	}

	log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warningf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	log.Infof("Logging initialized: file=%s, level=%s, stdout=enabled", fileLogger.Filename, level)
	return fileLogger, nil
}
