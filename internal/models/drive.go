package models

import "github.com/samber/lo"

// Drive is a mounted volume that carries a usable label.
type Drive struct {
	Mount  string `json:"mount"`
	Label  string `json:"label"`
	FSType string `json:"fs_type,omitempty"`
	Total  uint64 `json:"total_bytes"`
	Free   uint64 `json:"free_bytes"`
}

// Snapshot is the set of labeled drives seen at the start of a run.
type Snapshot struct {
	Drives []Drive `json:"drives"`
}

// Lookup returns the first drive carrying label. When a label is mounted
// more than once the earliest enumerated volume wins.
func (s *Snapshot) Lookup(label string) (Drive, bool) {
	if s == nil {
		return Drive{}, false
	}
	return lo.Find(s.Drives, func(d Drive) bool {
		return d.Label == label
	})
}

// Labels lists labels in enumeration order.
func (s *Snapshot) Labels() []string {
	if s == nil {
		return nil
	}
	return lo.Map(s.Drives, func(d Drive, _ int) string {
		return d.Label
	})
}

// Duplicates lists labels that appear on more than one mounted volume.
func (s *Snapshot) Duplicates() []string {
	return lo.FindDuplicates(s.Labels())
}

// Endpoint is one resolved side of a synchronization pair.
type Endpoint struct {
	Label  string   `json:"label"`
	Path   string   `json:"path"`
	Remote bool     `json:"remote"`
	Args   []string `json:"arguments,omitempty"`
}

// Pair is a single hub -> destination invocation.
type Pair struct {
	Source      Endpoint `json:"source"`
	Destination Endpoint `json:"destination"`
	Mode        SyncMode `json:"mode"`
	Args        []string `json:"arguments,omitempty"`
}
