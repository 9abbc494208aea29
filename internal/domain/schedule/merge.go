package schedule

import "sort"

// Merge combines per-partition schedules into one list keyed by external id.
// When an event appears more than once the variant with the later date is
// kept; a missing date is older than any date. Output is ordered by date
// ascending with undated games first.
func Merge(partitions ...[]Game) []Game {
	order := make([]string, 0, 64)
	byID := make(map[string]Game, 64)

	for _, partition := range partitions {
		for _, item := range partition {
			if item.ExternalID == "" {
				continue
			}
			existing, ok := byID[item.ExternalID]
			if !ok {
				order = append(order, item.ExternalID)
				byID[item.ExternalID] = item
				continue
			}
			if dateOrMinusOne(item.Date) > dateOrMinusOne(existing.Date) {
				byID[item.ExternalID] = item
			}
		}
	}

	out := make([]Game, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dateOrZero(out[i].Date) < dateOrZero(out[j].Date)
	})
	return out
}

func dateOrMinusOne(value *int64) int64 {
	if value == nil {
		return -1
	}
	return *value
}

func dateOrZero(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}
