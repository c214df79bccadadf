package publisher

import "strconv"

const (
	SubjectRosterChanged = "duelwall.roster.changed"
	SubjectWallRefreshed = "duelwall.wall.refreshed"

	StreamName     = "DUELWALL_EVENTS"
	StreamSubjects = "duelwall.>"
	StreamMaxAge   = "168h"
)

func SubjectDuelRecorded(duelID int64) string {
	return "duelwall.duel." + strconv.FormatInt(duelID, 10) + ".recorded"
}
