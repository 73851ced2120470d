// Package output writes snapshot files for the external widget renderer.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgillr/nextalent-regwatch/internal/digest"
)

// Write stores the snapshot as regwatch.json plus a dated copy
// (regwatch-YYYY-MM-DD.json) kept around as a fallback for bad runs.
func Write(dir string, snap digest.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Name the dated copy after the run's own timestamp so a run crossing
	// midnight UTC cannot disagree with its file name.
	day := time.Now().UTC().Format("2006-01-02")
	if t, err := time.Parse(time.RFC3339, snap.LastUpdated); err == nil {
		day = t.UTC().Format("2006-01-02")
	}
	for _, name := range []string{"regwatch.json", "regwatch-" + day + ".json"} {
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
