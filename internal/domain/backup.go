package domain

import (
	"time"
)

// Run captures one scheduled backup execution. It lives from the trigger
// firing until the notification has been attempted, then is discarded.
type Run struct {
	TriggeredAt  time.Time
	OutputDir    string
	ArtifactPath string
	Err          error
}

// Succeeded reports whether the run produced an artifact.
func (r *Run) Succeeded() bool { return r.Err == nil }
