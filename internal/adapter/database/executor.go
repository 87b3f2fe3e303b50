// Package database holds the backup executors. Each executor opens a
// connection to its server, writes exactly one full backup artifact into the
// directory it is given, and releases the connection on every exit path.
package database

import (
	"fmt"
	"time"
)

// artifactName builds the collision-free artifact filename:
// {databaseId}_backup_{YYYYMMDD_HHMMSS}{ext}. Second-level precision keeps
// two runs on the same day from colliding.
func artifactName(databaseID string, ts time.Time, ext string) string {
	return fmt.Sprintf("%s_backup_%s%s", databaseID, ts.Format("20060102_150405"), ext)
}
