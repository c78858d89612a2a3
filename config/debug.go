package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DebugLog is nil unless debug logging is enabled. Callers gate verbose
// client-side tracing on it:
//
//	if config.DebugLog != nil {
//	    config.DebugLog.Printf("decoded %d events", n)
//	}
var DebugLog *log.Logger

// EnableDebugLog starts appending debug output to debug.log under dataDir.
func EnableDebugLog(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dataDir, "debug.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	DebugLog = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	return nil
}
