// Package report renders profiles and sentiment reports as plain text for
// terminal output.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/startuplens/pkg/models"
)

const width = 60

var (
	line     = strings.Repeat("═", width)
	thinLine = strings.Repeat("─", width)
)

// Render dispatches on the value's type. Unsupported types are an error.
func Render(v any) (string, error) {
	switch r := v.(type) {
	case *models.CompanyProfile:
		return Profile(r), nil
	case *models.NewsAnalysis:
		return News(r), nil
	case *models.SocialReport:
		return Social(r), nil
	default:
		return "", fmt.Errorf("no text rendering for %T", v)
	}
}

func header(sb *strings.Builder, title string, at time.Time) {
	sb.WriteString("\n" + line + "\n")
	fmt.Fprintf(sb, "  %s\n", title)
	if !at.IsZero() {
		fmt.Fprintf(sb, "  Generated: %s\n", at.UTC().Format("02 Jan 2006, 15:04 UTC"))
	}
	sb.WriteString(line + "\n")
}

func section(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "\n  ■ %s\n", title)
}

// Profile renders a scraped company profile.
func Profile(p *models.CompanyProfile) string {
	var sb strings.Builder
	header(&sb, p.Name, time.Time{})

	fmt.Fprintf(&sb, "  Location: %s | Industry: %s\n", p.Location, p.Industry)
	fmt.Fprintf(&sb, "  Website:  %s\n", p.Website)
	sb.WriteString(thinLine + "\n")
	for _, kv := range [][2]string{
		{"Employees", p.Employees},
		{"Revenue (est)", p.Revenue},
		{"Employee growth %", p.EmployeeGrowth},
		{"Total funding", p.Funding},
		{"Valuation", p.Valuation},
	} {
		fmt.Fprintf(&sb, "    %-20s %s\n", kv[0], kv[1])
	}

	if len(p.FundingRounds) > 0 {
		section(&sb, "FUNDING ROUNDS")
		for _, f := range p.FundingRounds {
			fmt.Fprintf(&sb, "    %-10s %-12s %-10s %s\n", f.Date, f.Amount, f.Round, f.LeadInvestor)
		}
	}
	if len(p.Competitors) > 0 {
		section(&sb, "COMPETITORS")
		for _, c := range p.Competitors {
			fmt.Fprintf(&sb, "    %-24s revenue %s, %s employees, growth %s%%\n", c.Name, c.Revenue, c.Employees, c.Growth)
		}
	}
	if len(p.TeamMembers) > 0 {
		section(&sb, "TEAM")
		for _, m := range p.TeamMembers {
			contact := string(m.ContactStatus)
			if m.LinkedInURL != nil {
				contact = *m.LinkedInURL
			}
			fmt.Fprintf(&sb, "    %-24s %-20s %s\n", m.Name, m.Role, contact)
		}
	}

	sb.WriteString("\n" + thinLine + "\n")
	fmt.Fprintf(&sb, "  Source: %s\n", p.SourceURL)
	return sb.String()
}

// News renders the company and industry news reports.
func News(n *models.NewsAnalysis) string {
	var sb strings.Builder
	header(&sb, fmt.Sprintf("News sentiment: %s / %s", n.Company.Query, n.Industry.Query), n.LastUpdated)

	for _, rep := range []struct {
		title  string
		report models.AggregateReport
	}{
		{"COMPANY: " + n.Company.Query, n.Company},
		{"INDUSTRY: " + n.Industry.Query, n.Industry},
	} {
		section(&sb, rep.title)
		fmt.Fprintf(&sb, "  %s %s (%+.3f) from %d articles [%s]\n",
			Gauge(rep.report.AverageSentiment), strings.ToUpper(string(rep.report.Prediction)),
			rep.report.AverageSentiment, rep.report.ArticleCount, rep.report.FetchStatus)
		for _, a := range rep.report.Articles {
			fmt.Fprintf(&sb, "\n    [%+.2f %s] %s (%s)\n", a.Sentiment.Combined, a.Sentiment.Label, a.Title, a.Source)
			if a.Summary != "" {
				fmt.Fprintf(&sb, "      %s\n", a.Summary)
			}
		}
		sb.WriteString(thinLine + "\n")
	}
	return sb.String()
}

// Social renders a social-media report.
func Social(r *models.SocialReport) string {
	var sb strings.Builder
	header(&sb, "Social sentiment: "+r.CompanyName, r.LastUpdated)

	if r.NoData {
		sb.WriteString("  No mentions found.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "  %s %s (%+.3f) from %d mentions\n",
		Gauge(r.AverageScores.Combined), strings.ToUpper(string(r.Prediction)),
		r.AverageScores.Combined, r.TotalMentions)
	d := r.SentimentDistribution
	fmt.Fprintf(&sb, "  Positive %d | Neutral %d | Negative %d | Polarity %+.3f\n",
		d.Positive, d.Neutral, d.Negative, r.AverageScores.Polarity)

	if len(r.CommonThemes) > 0 {
		section(&sb, "THEMES")
		fmt.Fprintf(&sb, "    %s\n", strings.Join(r.CommonThemes, ", "))
	}
	writeQuotes := func(title string, quotes []models.Quote) {
		if len(quotes) == 0 {
			return
		}
		section(&sb, title)
		for _, q := range quotes {
			fmt.Fprintf(&sb, "    [%+.2f %s] %s\n", q.Score, q.Source, truncate(q.Text, 160))
		}
	}
	writeQuotes("POSITIVE QUOTES", r.RepresentativeQuotes.Positive)
	writeQuotes("NEGATIVE QUOTES", r.RepresentativeQuotes.Negative)

	sb.WriteString(thinLine + "\n")
	return sb.String()
}

// Gauge draws a score in [-1, 1] as a fixed-width bar with a marker.
func Gauge(score float64) string {
	const cells = 21
	score = max(-1, min(1, score))
	pos := int((score + 1) / 2 * float64(cells-1) + 0.5)

	bar := []rune(strings.Repeat("─", cells))
	bar[cells/2] = '┼'
	bar[pos] = '●'
	return "[" + string(bar) + "]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
