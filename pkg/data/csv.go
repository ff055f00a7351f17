package data

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tunogya/crescendo/pkg/model"
)

// columns holds the located header index for each raw column, -1 when
// absent. A missing optional column degrades that feature to 0 for
// every row instead of failing the parse.
type columns struct {
	date         int
	track        int
	streams      int
	danceability int
	energy       int
	valence      int
	acousticness int
}

// Parse parses raw CSV text into records. Quoted fields may contain
// commas (simple quote-toggle scan, no escaped-quote support). Header
// columns are located by case-insensitive substring match; the first
// matching column wins. A header without both a date and a track
// column is fatal.
func Parse(csvText string) ([]model.Record, error) {
	lines := splitLines(csvText)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty input", model.ErrParse)
	}

	header := splitFields(lines[0])
	cols := locateColumns(header)
	if cols.date < 0 || cols.track < 0 {
		return nil, fmt.Errorf("%w: no parsable header (date/track column missing)", model.ErrParse)
	}

	var records []model.Record
	for _, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) < len(header) {
			continue // insufficient column count
		}

		date := strings.TrimSpace(fieldAt(fields, cols.date))
		trackID := strings.TrimSpace(fieldAt(fields, cols.track))
		if date == "" || trackID == "" {
			continue
		}

		records = append(records, model.Record{
			Date:         date,
			TrackID:      trackID,
			TrackName:    trackID,
			Streams:      floatAt(fields, cols.streams),
			Danceability: floatAt(fields, cols.danceability),
			Energy:       floatAt(fields, cols.energy),
			Valence:      floatAt(fields, cols.valence),
			Acousticness: floatAt(fields, cols.acousticness),
		})
	}

	return records, nil
}

func locateColumns(header []string) columns {
	return columns{
		date:         findColumn(header, "date"),
		track:        findColumn(header, "track"),
		streams:      findColumn(header, "stream"),
		danceability: findColumn(header, "danceability"),
		energy:       findColumn(header, "energy"),
		valence:      findColumn(header, "valence"),
		acousticness: findColumn(header, "acousticness"),
	}
}

// findColumn returns the first header index whose name contains the
// substring, case-insensitive, or -1.
func findColumn(header []string, sub string) int {
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), sub) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// splitFields splits one CSV line on commas outside double quotes.
// Quote characters toggle state and are not emitted.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	fields = append(fields, cur.String())

	return fields
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func floatAt(fields []string, idx int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(fieldAt(fields, idx)), 64)
	if err != nil {
		return 0
	}
	return v
}
