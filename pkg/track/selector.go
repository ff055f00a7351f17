// Package track ranks the loaded rows into a fixed track universe.
package track

import (
	"sort"

	"github.com/tunogya/crescendo/pkg/model"
)

// SelectTop aggregates total streams per track, keeps the top n by
// volume (ties broken by first-encountered order), and filters the row
// set down to the selected tracks. The returned ID order is the
// canonical column order for every downstream tensor and must never be
// re-sorted.
func SelectTop(records []model.Record, n int) ([]string, []model.Record, map[string]model.Track) {
	totals := make(map[string]float64)
	names := make(map[string]string)
	var order []string

	for i := range records {
		r := &records[i]
		if _, seen := totals[r.TrackID]; !seen {
			order = append(order, r.TrackID)
			names[r.TrackID] = r.TrackName
		}
		totals[r.TrackID] += r.Streams
	}

	// Stable sort keeps first-encountered order for equal totals.
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})

	if n > 0 && len(order) > n {
		order = order[:n]
	}

	selected := make(map[string]model.Track, len(order))
	for rank, id := range order {
		selected[id] = model.Track{
			ID:           id,
			Name:         names[id],
			TotalStreams: totals[id],
			Rank:         rank,
		}
	}

	var filtered []model.Record
	for i := range records {
		if _, ok := selected[records[i].TrackID]; ok {
			filtered = append(filtered, records[i])
		}
	}

	return order, filtered, selected
}
