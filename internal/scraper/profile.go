// Package scraper extracts structured company profiles from the
// company-data site's HTML pages.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/infra"
	"github.com/seenimoa/startuplens/pkg/models"
)

const sourceProfile = "profile"

// Scraper fetches and parses company profile pages.
type Scraper struct {
	client      *infra.HTTPClient
	layout      Layout
	baseURL     string
	concurrency int
	cache       *infra.Cache[*models.CompanyProfile]
	logger      *slog.Logger
}

// New creates a Scraper. The client should carry the profile-site rate limiter.
func New(cfg config.ScraperConfig, client *infra.HTTPClient, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.ConcurrentFetches
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Scraper{
		client:      client,
		layout:      LayoutFromConfig(cfg.Layout),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		concurrency: concurrency,
		cache:       infra.NewCache[*models.CompanyProfile](time.Duration(cfg.CacheTTL) * time.Second),
		logger:      logger.With("component", "scraper"),
	}
}

// WithLayout returns a copy of s using layout.
func (s *Scraper) WithLayout(layout Layout) *Scraper {
	cp := *s
	cp.layout = layout
	return &cp
}

// PurgeCache drops expired cached profiles.
func (s *Scraper) PurgeCache() { s.cache.Cleanup() }

// ProfileURL builds the profile page URL for a company name: the name is
// lower-cased with spaces removed.
func (s *Scraper) ProfileURL(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	return s.baseURL + "/company/" + url.PathEscape(slug)
}

// ScrapeCompany validates name and scrapes its profile page.
func (s *Scraper) ScrapeCompany(ctx context.Context, name string) (*models.CompanyProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.Validationf("Company name is required")
	}
	return s.ScrapeProfile(ctx, s.ProfileURL(name))
}

// ScrapeProfile fetches pageURL and extracts a CompanyProfile. Only the page
// fetch itself can fail; missing sections degrade to sentinels and failed
// contact lookups are recorded per team member.
func (s *Scraper) ScrapeProfile(ctx context.Context, pageURL string) (*models.CompanyProfile, error) {
	if cached, ok := s.cache.Get(pageURL); ok {
		return cached, nil
	}

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	p := s.parseProfile(doc, pageURL)
	s.resolveTeamContacts(ctx, p.TeamMembers)

	s.logger.Info("profile scraped",
		"url", pageURL,
		"name", p.Name,
		"team", len(p.TeamMembers),
		"competitors", len(p.Competitors),
		"funding_rounds", len(p.FundingRounds),
	)
	s.cache.Set(pageURL, p)
	return p, nil
}

// fetchDocument GETs pageURL and parses it, wrapping any failure in an UpstreamError.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	data, err := s.client.GetBytes(ctx, pageURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		upErr := &models.UpstreamError{Source: sourceProfile, URL: pageURL, Err: err}
		var statusErr *infra.HTTPStatusError
		if errors.As(err, &statusErr) {
			upErr.StatusCode = statusErr.StatusCode
		}
		return nil, upErr
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.UpstreamError{Source: sourceProfile, URL: pageURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}
	return doc, nil
}

// parseProfile extracts every section of the page. It never fails.
func (s *Scraper) parseProfile(doc *goquery.Document, pageURL string) *models.CompanyProfile {
	l := s.layout
	p := models.NewCompanyProfile(pageURL)

	if heading := ExtractText(doc.Find(l.NameHeading)); heading != models.NotAvailable {
		name, _, _ := strings.Cut(heading, l.NameMarker)
		if name = strings.TrimSpace(name); name != "" {
			p.Name = name
		}
	}
	p.Location = ExtractText(doc.Find(l.Location))
	p.Industry = ExtractText(doc.Find(l.Industry))
	p.Website = ExtractAttr(doc.Find(l.Website), "href")

	s.parseMetrics(doc, p)

	tables := doc.Find(l.Tables)
	p.TeamMembers = s.parseTeam(s.table(tables, "team", l.Team), pageURL)
	p.Competitors = s.parseCompetitors(s.table(tables, "competitors", l.Competitors))
	p.FundingRounds = s.parseFunding(s.table(tables, "funding", l.Funding))
	return p
}

func (s *Scraper) parseMetrics(doc *goquery.Document, p *models.CompanyProfile) {
	doc.Find(s.layout.MetricBlocks).Each(func(_ int, block *goquery.Selection) {
		text := block.Text()
		for _, rule := range metricRules {
			if !strings.Contains(text, rule.label) {
				continue
			}
			v := ExtractText(block.Find(s.layout.MetricValue))
			if rule.strip != "" {
				v = stripChars(v, rule.strip)
			}
			rule.set(p, v)
		}
	})
}

// table returns the tbody at ts.Index, or nil when the page has fewer tables.
func (s *Scraper) table(tables *goquery.Selection, section string, ts TableSpec) *goquery.Selection {
	if ts.Index < 0 || ts.Index >= tables.Length() {
		s.logger.Debug("section degraded", "error", &models.ParseError{
			Section: section,
			Reason:  fmt.Sprintf("table %d requested, page has %d", ts.Index, tables.Length()),
		})
		return nil
	}
	return tables.Eq(ts.Index)
}

// eachRow calls fn for every row of table with at least ts.MinColumns cells.
func (s *Scraper) eachRow(table *goquery.Selection, section string, ts TableSpec, fn func(cells *goquery.Selection)) {
	if table == nil {
		return
	}
	table.Find(s.layout.Rows).Each(func(i int, row *goquery.Selection) {
		cells := row.Find(s.layout.Cells)
		if cells.Length() < ts.MinColumns {
			s.logger.Debug("row skipped", "error", &models.ParseError{
				Section: section,
				Reason:  fmt.Sprintf("row %d has %d columns, want %d", i, cells.Length(), ts.MinColumns),
			})
			return
		}
		fn(cells)
	})
}

func (s *Scraper) parseTeam(table *goquery.Selection, pageURL string) []models.TeamMember {
	members := []models.TeamMember{}
	s.eachRow(table, "team", s.layout.Team, func(cells *goquery.Selection) {
		link := cells.Eq(0).Find(s.layout.EmployeeLink).First()
		m := models.TeamMember{
			Name:          ExtractText(link),
			Role:          ExtractText(cells.Eq(1)),
			ContactStatus: models.ContactSkipped,
		}
		if href := ExtractAttr(link, "href"); href != models.NotAvailable {
			if abs, err := resolveURL(pageURL, href); err == nil {
				m.EmployeeURL = &abs
			}
		}
		members = append(members, m)
	})
	return members
}

func (s *Scraper) parseCompetitors(table *goquery.Selection) []models.Competitor {
	competitors := []models.Competitor{}
	s.eachRow(table, "competitors", s.layout.Competitors, func(cells *goquery.Selection) {
		competitors = append(competitors, models.Competitor{
			Name:      ExtractText(cells.Eq(0).Find(s.layout.CompetitorLink)),
			Revenue:   ExtractText(cells.Eq(1)),
			Employees: ExtractText(cells.Eq(2)),
			Growth:    stripChars(ExtractText(cells.Eq(3)), "%"),
			Funding:   ExtractText(cells.Eq(4)),
			Valuation: ExtractText(cells.Eq(5)),
		})
	})
	return competitors
}

func (s *Scraper) parseFunding(table *goquery.Selection) []models.FundingRound {
	rounds := []models.FundingRound{}
	s.eachRow(table, "funding", s.layout.Funding, func(cells *goquery.Selection) {
		date := ExtractText(cells.Eq(0))
		if date != models.NotAvailable {
			date = normalizeDate(date)
		}
		rounds = append(rounds, models.FundingRound{
			Date:         date,
			Amount:       ExtractText(cells.Eq(1)),
			Round:        ExtractText(cells.Eq(2)),
			LeadInvestor: ExtractText(cells.Eq(3)),
			ArticleLink:  ExtractAttr(cells.Eq(4).Find(s.layout.ArticleLink), "href"),
		})
	})
	return rounds
}

// resolveURL makes href absolute relative to base.
func resolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}
