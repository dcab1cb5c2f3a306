package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"shoebox/internal/config"
	"shoebox/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckExiftool verifies that the configured exiftool binary runs and reports
// its version. It uses a 15-second timeout and a single attempt.
func CheckExiftool(ctx context.Context, binary string) Result {
	const name = "Exiftool"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "binary not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found (install exiftool)", binary)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	out, err := exec.CommandContext(checkCtx, resolved, "-ver").Output()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s failed to run: %v", resolved, err)}
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s reported no version", resolved)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("version %s", version)}
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
// Both the daemon and the CLI status command use this to avoid duplicating
// the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "ExifTool",
			Command:     cfg.ExiftoolBinary(),
			Description: "Required for metadata extraction and write-back",
		},
	}
	return deps.CheckBinaries(requirements)
}
