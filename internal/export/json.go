package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mkarslan/wordsprint/internal/dates"
	"github.com/mkarslan/wordsprint/internal/progress"
)

// Payload is the portable snapshot of a tracker: project settings, the
// per-day totals, and a little metadata about where it came from.
type Payload struct {
	Project progress.Project `json:"project"`
	Entries progress.Entries `json:"entries"`
	Meta    Meta             `json:"meta"`
}

type Meta struct {
	Mode       string `json:"mode"`
	Theme      string `json:"theme,omitempty"`
	TimeWarp   string `json:"timeWarp,omitempty"`
	ExportedAt string `json:"exportedAt"`
}

// Build assembles an export payload for the current state.
func Build(p progress.Project, entries progress.Entries, mode, theme, timeWarp string) Payload {
	return Payload{
		Project: p,
		Entries: entries.Clone(),
		Meta: Meta{
			Mode:       mode,
			Theme:      theme,
			TimeWarp:   timeWarp,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// FileName names an export file after the mode and the current date,
// e.g. "wordsprint-offline-2025-11-09.json".
func FileName(mode string) string {
	tag := "offline"
	if mode == "cloud" {
		tag = "cloud"
	}
	return fmt.Sprintf("wordsprint-%s-%s.json", tag, dates.Today())
}

// ToJSON writes the payload as indented JSON.
func ToJSON(p Payload, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads and sanitizes an export file.
func FromJSON(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("read import file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an export payload and runs it through Sanitize, so a
// hand-edited or partially corrupt file degrades instead of failing.
func Parse(data []byte) (Payload, error) {
	var raw Payload
	if err := json.Unmarshal(data, &raw); err != nil {
		return Payload{}, fmt.Errorf("parse import file: %w", err)
	}
	return Sanitize(raw), nil
}

// Sanitize fills missing or invalid fields from the default project and
// drops entries whose keys are not real dates. Negative day totals are
// clamped to zero; a non-positive goal falls back to the default.
func Sanitize(raw Payload) Payload {
	out := raw
	def := progress.DefaultProject()

	if out.Project.Name == "" {
		out.Project.Name = def.Name
	}
	if out.Project.GoalWords <= 0 {
		out.Project.GoalWords = def.GoalWords
	}
	if !dates.Valid(out.Project.StartDate) {
		out.Project.StartDate = def.StartDate
	}
	if !dates.Valid(out.Project.EndDate) {
		out.Project.EndDate = def.EndDate
	}
	if out.Project.BaselineWords < 0 {
		out.Project.BaselineWords = 0
	}

	clean := make(progress.Entries, len(raw.Entries))
	for day, words := range raw.Entries {
		if !dates.Valid(day) {
			continue
		}
		if words < 0 {
			words = 0
		}
		clean[day] = words
	}
	out.Entries = clean

	if out.Meta.TimeWarp != "" && !dates.Valid(out.Meta.TimeWarp) {
		out.Meta.TimeWarp = ""
	}
	return out
}
