package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/startuplens/pkg/models"
)

// ContactResult is the outcome of resolving one team member's contact link.
type ContactResult struct {
	URL    string
	Status models.ContactStatus
	Err    error // set when Status is ContactFetchFailed
}

// ResolveContact fetches an employee page and returns the first link that
// follows the contact icon. It never returns an error directly: failures
// are reported through the result.
func (s *Scraper) ResolveContact(ctx context.Context, employeeURL string) ContactResult {
	doc, err := s.fetchDocument(ctx, employeeURL)
	if err != nil {
		return ContactResult{Status: models.ContactFetchFailed, Err: err}
	}

	href := linkAfter(doc, s.layout.ContactIcon)
	if href == "" {
		return ContactResult{Status: models.ContactNotPresent}
	}
	return ContactResult{URL: href, Status: models.ContactResolved}
}

// resolveTeamContacts fills LinkedInURL and ContactStatus for every member
// with an employee page. Lookups run concurrently; members are updated in
// place so row order is kept.
func (s *Scraper) resolveTeamContacts(ctx context.Context, members []models.TeamMember) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range members {
		if members[i].EmployeeURL == nil {
			continue
		}
		m := &members[i]
		g.Go(func() error {
			res := s.ResolveContact(gctx, *m.EmployeeURL)
			m.ContactStatus = res.Status
			if res.Status == models.ContactResolved {
				link := res.URL
				m.LinkedInURL = &link
			}
			if res.Err != nil {
				s.logger.Warn("contact lookup failed", "member", m.Name, "url", *m.EmployeeURL, "error", res.Err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// linkAfter returns the href of the first anchor that follows the first
// node matching marker in document order, or "" when either is missing or
// the anchor has no href.
func linkAfter(doc *goquery.Document, marker string) string {
	icon := doc.Find(marker).First()
	if icon.Length() == 0 {
		return ""
	}
	target := icon.Get(0)

	var href string
	seen := false
	// Find("*") yields nodes in document order.
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		node := sel.Get(0)
		if !seen {
			seen = node == target
			return true
		}
		if node.Data != "a" {
			return true
		}
		href, _ = sel.Attr("href")
		return false
	})
	return href
}
