package main

import (
	"github.com/gofrs/flock"

	"shoebox/internal/config"
	"shoebox/internal/preflight"
)

func configStatusLine(path string, exists bool, colorize bool) string {
	if path == "" {
		return renderStatusLine("Config", statusWarn, "no configuration file resolved", colorize)
	}
	if !exists {
		return renderStatusLine("Config", statusWarn, path+" (missing, defaults in use)", colorize)
	}
	return renderStatusLine("Config", statusOK, path, colorize)
}

func checkStatusLine(result preflight.Result, colorize bool) string {
	kind := statusError
	if result.Passed {
		kind = statusOK
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}

func processingLockLine(active bool, colorize bool) string {
	if active {
		return renderStatusLine("Processing", statusOK, "Active (lock held by a running instance)", colorize)
	}
	return renderStatusLine("Processing", statusInfo, "Idle", colorize)
}

// processingLockHeld probes the daemon lock file without keeping it.
func processingLockHeld(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}
	lock := flock.New(cfg.LockFilePath())
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}
