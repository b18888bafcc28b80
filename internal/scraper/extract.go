package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/startuplens/pkg/models"
)

// ExtractText returns the whitespace-normalized text of the first node in
// sel, or models.NotAvailable when sel is nil, empty, or has no text.
func ExtractText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return models.NotAvailable
	}
	text := strings.Join(strings.Fields(sel.First().Text()), " ")
	if text == "" {
		return models.NotAvailable
	}
	return text
}

// ExtractAttr returns the trimmed value of attr on the first node in sel,
// or models.NotAvailable when the node or attribute is missing.
func ExtractAttr(sel *goquery.Selection, attr string) string {
	if sel == nil || sel.Length() == 0 {
		return models.NotAvailable
	}
	val, ok := sel.First().Attr(attr)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return models.NotAvailable
	}
	return val
}

// stripChars removes every occurrence of chars from s, leaving the sentinel alone.
func stripChars(s, chars string) string {
	if s == models.NotAvailable {
		return s
	}
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
	out = strings.TrimSpace(out)
	if out == "" {
		return models.NotAvailable
	}
	return out
}
