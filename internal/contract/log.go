package contract

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(1)
}

// Warning logs a warning to stderr and the run log.
func Warning(format string, args ...any) {
	log.Printf("⚠️  "+format, args...)
}

// Info logs progress to stderr and the run log.
func Info(format string, args ...any) {
	log.Printf(format, args...)
}

// SetupRunLog tees the standard logger into a timestamped file under
// logDir in addition to stderr. The caller owns closing the file.
// A file creation failure is non-fatal; logging stays on stderr.
func SetupRunLog(logDir, prefix string) *os.File {
	name := fmt.Sprintf("%s_%s.log", prefix, time.Now().Format(TimestampFormat))
	f, err := os.Create(filepath.Join(logDir, name))
	if err != nil {
		Warning("could not create log file %s: %v", name, err)
		return nil
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f
}
