package jobs

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	salaryRe = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*([kK])?`)
	agoRe    = regexp.MustCompile(`^(\d+)\+?\s*(hour|day|week|month)s?\s+ago$`)
)

// ParseSalary extracts the salary range of a raw text like "$50,000 - $70,000" or "60k-80k".
// A single amount is both the min and the max.
func ParseSalary(raw string) (null.Float64, null.Float64) {
	var amounts []float64
	for _, m := range salaryRe.FindAllStringSubmatch(raw, -1) {
		amount, err := strconv.ParseFloat(normalizeAmount(m[1]), 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			amount *= 1000
		}
		amounts = append(amounts, amount)
		if len(amounts) == 2 {
			break
		}
	}

	switch len(amounts) {
	case 0:
		return null.Float64{}, null.Float64{}
	case 1:
		return null.Float64From(amounts[0]), null.Float64From(amounts[0])
	}
	if amounts[0] > amounts[1] {
		amounts[0], amounts[1] = amounts[1], amounts[0]
	}
	return null.Float64From(amounts[0]), null.Float64From(amounts[1])
}

// normalizeAmount drops the thousands separators of s, keeping a decimal part of 1 or 2 digits.
func normalizeAmount(s string) string {
	sep := strings.LastIndexAny(s, ".,")
	if sep >= 0 && len(s)-sep-1 <= 2 {
		whole := strings.NewReplacer(",", "", ".", "").Replace(s[:sep])
		return whole + "." + s[sep+1:]
	}
	return strings.NewReplacer(",", "", ".", "").Replace(s)
}

// ParsePublishedDate turns what job boards show as publication date ("today", "3 days ago",
// "30+ days ago", "2021-12-01") into a date relative to now.
func ParsePublishedDate(raw string, now time.Time) null.Time {
	s := strings.ToLower(strings.TrimSpace(raw))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch s {
	case "":
		return null.Time{}
	case "today", "just posted", "just now", "new":
		return null.TimeFrom(today)
	case "yesterday":
		return null.TimeFrom(today.AddDate(0, 0, -1))
	}

	if m := agoRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return null.Time{}
		}
		switch m[2] {
		case "hour":
			return null.TimeFrom(today)
		case "day":
			return null.TimeFrom(today.AddDate(0, 0, -n))
		case "week":
			return null.TimeFrom(today.AddDate(0, 0, -7*n))
		case "month":
			return null.TimeFrom(today.AddDate(0, -n, 0))
		}
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return null.TimeFrom(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return null.Time{}
}
