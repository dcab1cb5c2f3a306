package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteJSON marshals payload and writes it to path, creating parent
// directories as needed.
func WriteJSON(t testing.TB, path string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload for %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSidecar writes a minimal Takeout sidecar JSON with the provided
// photo-taken timestamp (epoch seconds as a string) and optional geo data.
func WriteSidecar(t testing.TB, path, takenEpoch string, lat, lon float64) {
	t.Helper()

	payload := map[string]any{
		"title": filepath.Base(path),
		"photoTakenTime": map[string]any{
			"timestamp": takenEpoch,
		},
		"geoData": map[string]any{
			"latitude":  lat,
			"longitude": lon,
		},
	}
	WriteJSON(t, path, payload)
}
