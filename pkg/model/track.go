package model

// Track holds metadata for one selected track. Rank is the position in
// the selection order (0 = highest cumulative volume); that order is
// the canonical column order of every downstream tensor and must never
// be re-sorted.
type Track struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TotalStreams float64 `json:"total_streams"`
	Rank         int     `json:"rank"`
}
