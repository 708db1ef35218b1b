package registry

import (
	"time"

	"github.com/matzehuels/npm-time-machine/pkg/semver"
)

// Record is one published version and its publish timestamp. The timestamp
// keeps the offset the registry reported it in.
type Record struct {
	Version     *semver.Version `json:"version"`
	PublishedAt time.Time       `json:"published_at"`
}

// History is the release history of one package, in no particular order.
type History []Record

// Versions returns the versions of h.
func (h History) Versions() []*semver.Version {
	out := make([]*semver.Version, len(h))
	for i, r := range h {
		out[i] = r.Version
	}
	return out
}

// ParseTimes converts a registry "time" map into a History. Pairs whose key
// is not a strict semantic version or whose value is not an RFC 3339
// timestamp are dropped, which also removes the "created" and "modified"
// bookkeeping entries.
func ParseTimes(times map[string]string) History {
	h := make(History, 0, len(times))
	for ver, ts := range times {
		v, err := semver.Parse(ver)
		if err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		h = append(h, Record{Version: v, PublishedAt: t})
	}
	return h
}

// publishedBy reports whether t falls on date's calendar day or earlier.
// t is read in its own offset, date in its own location.
func publishedBy(t, date time.Time) bool {
	ty, tm, td := t.Date()
	dy, dm, dd := date.Date()
	if ty != dy {
		return ty < dy
	}
	if tm != dm {
		return tm < dm
	}
	return td <= dd
}
