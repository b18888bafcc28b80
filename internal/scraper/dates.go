package scraper

import (
	"strings"
	"time"
)

const canonicalDate = "2006-01-02"

var fundingDateLayouts = []string{
	canonicalDate,
	"2006-1-2",
	"2006/01/02",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// normalizeDate re-formats a funding date as YYYY-MM-DD. Text that matches
// none of the known layouts is returned unchanged.
func normalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, layout := range fundingDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(canonicalDate)
		}
	}
	return s
}
