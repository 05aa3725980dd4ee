package model

// SnapshotVersion is the format version written by Snapshot.
// Restoring accepts any version with the same major version.
const SnapshotVersion = "v1.0.0"

// Snapshot is the complete, serialisable session state.
type Snapshot struct {
	Version string  `json:"version"`
	Teams   []Team  `json:"teams"`
	Ledger  []Entry `json:"ledger"`
	NextSeq int     `json:"nextSeq"`
}
