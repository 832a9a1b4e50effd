package mesh

import (
	"time"

	"github.com/google/uuid"
)

// ScannerReport describes one placed scanner
type ScannerReport struct {
	ID       int      `json:"id"`
	Position Point    `json:"position"`
	Rotation Rotation `json:"rotation"`
	Beacons  int      `json:"beacons"`
}

// Report is the published summary of one alignment run
type Report struct {
	RunID         string          `json:"runId"`
	UniqueBeacons int             `json:"uniqueBeacons"`
	MaxSeparation int             `json:"maxSeparation"`
	Root          int             `json:"root"`
	Candidates    int             `json:"candidates"`
	Edges         int             `json:"edges"`
	Scanners      []ScannerReport `json:"scanners"`
	Timestamp     int64           `json:"timestamp"`
}

// NewReport summarizes an alignment under a fresh run id
func NewReport(al *Alignment) *Report {
	r := &Report{
		RunID:         uuid.NewString(),
		UniqueBeacons: al.UniqueBeacons(),
		MaxSeparation: al.MaxSeparation(),
		Root:          al.Root,
		Candidates:    len(al.Candidates),
		Edges:         len(al.Edges),
		Scanners:      make([]ScannerReport, len(al.Poses)),
		Timestamp:     time.Now().Unix(),
	}
	for i, p := range al.Poses {
		r.Scanners[i] = ScannerReport{
			ID:       i,
			Position: p.Transform.Translation,
			Rotation: p.Transform.Rotation,
			Beacons:  len(al.Scanners[i].Beacons),
		}
	}
	return r
}
