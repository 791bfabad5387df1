package match

import "time"

// RecentlyFinishedWindow is how long after kickoff a finished match still
// outranks the next scheduled one.
const RecentlyFinishedWindow = 48 * time.Hour

// SelectNext picks the single match worth showing, first rule wins:
// a live match, then a match finished within RecentlyFinishedWindow of
// kickoff, then a scheduled match. It returns nil when none qualifies.
func SelectNext(records []Record, now time.Time) []Record {
	for _, r := range records {
		if r.State == StateIn {
			return []Record{r}
		}
	}
	for _, r := range records {
		if r.State != StatePost || r.KickoffAt.IsZero() {
			continue
		}
		if age := now.Sub(r.KickoffAt); age >= 0 && age <= RecentlyFinishedWindow {
			return []Record{r}
		}
	}
	for _, r := range records {
		if r.State == StatePre {
			return []Record{r}
		}
	}
	return nil
}

// FirstLive returns the first in-play record, if any.
func FirstLive(records []Record) (Record, bool) {
	for _, r := range records {
		if r.State == StateIn {
			return r, true
		}
	}
	return Record{}, false
}
