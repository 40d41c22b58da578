package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"reviewsvisor/internal/dedupe"
	"reviewsvisor/internal/domain"
)

// csvMaxRows bounds one upload; bigger files should be split by the caller.
const csvMaxRows = 5000

// parseCSVReviews reads a review CSV into domain reviews. Expected header:
// platform,author,rating,comment,date[,lang] in any column order. All rows
// are validated before anything is returned so the caller can report every
// problem in one pass; invalid rows are skipped with a RowError carrying the
// 1-based data row number.
func parseCSVReviews(placeID int64, r io.Reader) ([]domain.Review, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty CSV")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["rating"]; !ok {
		return nil, nil, fmt.Errorf("CSV header misses required column %q", "rating")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		out     []domain.Review
		rowErrs []RowError
	)
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Field: "row", Error: err.Error()})
			continue
		}
		if rowNum > csvMaxRows {
			return nil, nil, fmt.Errorf("CSV exceeds %d rows", csvMaxRows)
		}

		ratingStr := field(row, "rating")
		rating, err := strconv.Atoi(ratingStr)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Field: "rating", Error: fmt.Sprintf("not an integer: %q", ratingStr)})
			continue
		}
		if rating < 1 || rating > 5 {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Field: "rating", Error: fmt.Sprintf("out of range: %d", rating)})
			continue
		}

		rv := domain.Review{PlaceID: placeID, Rating: &rating}
		if v := field(row, "platform"); v != "" {
			rv.Platform = &v
		}
		if v := field(row, "author"); v != "" {
			rv.Author = &v
		}
		if v := field(row, "comment"); v != "" {
			rv.Comment = &v
		}
		if v := field(row, "lang"); v != "" {
			rv.Lang = &v
		}
		if v := field(row, "date"); v != "" {
			if t := dedupe.ParseDate(v); !t.IsZero() {
				rv.ReviewedAt = &t
			}
			// vague dates degrade to "unknown" rather than failing the row
		}
		out = append(out, rv)
	}
	return out, rowErrs, nil
}
