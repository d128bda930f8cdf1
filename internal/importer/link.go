package importer

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"puzzled_pint_map/internal/models"
)

// LinkEvent records eventID in the event lists of the cities that hosted the
// entries, matching city names case-insensitively. Earlier links of the same
// event are dropped first so a re-import replaces them.
func LinkEvent(cities []models.City, eventID int, entries []LegacyEntry) (linked int, unmatched []string) {
	fold := cases.Fold()
	index := make(map[string]int, len(cities))
	for i, c := range cities {
		index[fold.String(strings.TrimSpace(c.Name))] = i
		cities[i].EventIDs = lo.Without(c.EventIDs, eventID)
		cities[i].RemoteEventIDs = lo.Without(c.RemoteEventIDs, eventID)
	}

	touched := make(map[int]struct{})
	for _, e := range entries {
		i, ok := index[fold.String(strings.TrimSpace(e.City))]
		if !ok {
			unmatched = append(unmatched, e.City)
			continue
		}
		c := &cities[i]
		if e.Remote() {
			c.RemoteEventIDs = addID(c.RemoteEventIDs, eventID)
		} else {
			c.EventIDs = addID(c.EventIDs, eventID)
		}
		touched[i] = struct{}{}
	}
	return len(touched), lo.Uniq(unmatched)
}

func addID(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	ids = append(ids, id)
	slices.Sort(ids)
	return ids
}

// ApplyStatus sets each city's status from its participation in the latest
// event: active in person, remote if only remotely, defunct otherwise.
func ApplyStatus(cities []models.City, latestEventID int) {
	for i := range cities {
		cities[i].Status = StatusFor(cities[i], latestEventID)
	}
}

func StatusFor(c models.City, latestEventID int) models.CityStatus {
	switch {
	case slices.Contains(c.EventIDs, latestEventID):
		return models.CityActive
	case slices.Contains(c.RemoteEventIDs, latestEventID):
		return models.CityRemote
	default:
		return models.CityDefunct
	}
}
