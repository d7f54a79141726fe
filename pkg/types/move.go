package types

import "time"

// MoveResult holds the outcome of a dispatch attempt for a single file
type MoveResult struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Category        string `json:"category"`
	Moved           bool   `json:"moved"`
	Error           error  `json:"error,omitempty"`
}

// ScanReport summarizes one sweep of a directory
type ScanReport struct {
	Directory string       `json:"directory"`
	Eligible  int          `json:"eligible"`
	Moved     int          `json:"moved"`
	Failed    int          `json:"failed"`
	Results   []MoveResult `json:"results,omitempty"`
}

// Empty reports whether the sweep found nothing to organize
func (r ScanReport) Empty() bool {
	return r.Eligible == 0
}

// Move is a completed relocation as recorded in the journal
type Move struct {
	ID          string    `json:"id"`
	SourcePath  string    `json:"source_path"`
	Destination string    `json:"destination"`
	Category    string    `json:"category"`
	SizeBytes   int64     `json:"size_bytes"`
	MovedAt     time.Time `json:"moved_at"`
}
