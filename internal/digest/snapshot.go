package digest

import "time"

// Snapshot is the terminal artifact of one run, shaped for the downstream
// widget renderer.
type Snapshot struct {
	LastUpdated string                    `json:"lastUpdated"`
	Sections    map[string][]SnapshotItem `json:"sections"`
}

type SnapshotItem struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	Published string `json:"published,omitempty"`
}

// BuildSnapshot is pure assembly: stamp the run time, keep only non-empty
// sectors, preserve the ordering Finalize produced.
func BuildSnapshot(sections map[string][]Item, runTime time.Time) Snapshot {
	snap := Snapshot{
		LastUpdated: isoZ(runTime),
		Sections:    make(map[string][]SnapshotItem, len(sections)),
	}
	for sector, items := range sections {
		if len(items) == 0 {
			continue
		}
		arr := make([]SnapshotItem, 0, len(items))
		for _, it := range items {
			si := SnapshotItem{
				Title:   it.Title,
				URL:     it.URL,
				Source:  it.Source,
				Summary: it.Summary,
			}
			if !it.Published.IsZero() {
				si.Published = isoZ(it.Published)
			}
			arr = append(arr, si)
		}
		snap.Sections[sector] = arr
	}
	return snap
}

// isoZ renders second-precision ISO-8601 Zulu, the schema the widget expects.
func isoZ(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
