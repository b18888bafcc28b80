package scraper

import (
	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/pkg/models"
)

// TableSpec locates one positional table on the profile page.
type TableSpec struct {
	Index      int // position among all tbody elements
	MinColumns int // rows with fewer cells are skipped
}

// Layout is the single mapping from profile entities to page locations.
// The profile site has no stable identifiers for its tables, so a layout
// change upstream should only ever touch this value.
type Layout struct {
	NameHeading string
	NameMarker  string // heading text from this marker on is dropped
	Location    string
	Industry    string
	Website     string

	MetricBlocks string
	MetricValue  string

	Tables string
	Rows   string
	Cells  string

	Team        TableSpec
	Competitors TableSpec
	Funding     TableSpec

	CompetitorLink string
	EmployeeLink   string
	ArticleLink    string

	// ContactIcon marks the external profile on an employee page; the
	// contact link is the first anchor following it in document order.
	ContactIcon string
}

// DefaultLayout returns the layout of the current growjo.com company page.
func DefaultLayout() Layout {
	return Layout{
		NameHeading: "div.col h1",
		NameMarker:  "Revenue",
		Location:    "#revenue-financials h4",
		Industry:    `#revenue-financials a[href^="/industry/"]`,
		Website:     "#revenue-financials a",

		MetricBlocks: ".col-md-12 > div > div",
		MetricValue:  "p:nth-child(2)",

		Tables: "tbody",
		Rows:   "tr",
		Cells:  "td",

		Team:        TableSpec{Index: 0, MinColumns: 2},
		Competitors: TableSpec{Index: 1, MinColumns: 6},
		Funding:     TableSpec{Index: 3, MinColumns: 5},

		CompetitorLink: "a[href^='/company/']",
		EmployeeLink:   "a[href^='/employee/']",
		ArticleLink:    "a",

		ContactIcon: "div.wpr i.fa-linkedin",
	}
}

// LayoutFromConfig applies the configured table positions to DefaultLayout.
// A zero LayoutConfig keeps the default positions.
func LayoutFromConfig(cfg config.LayoutConfig) Layout {
	l := DefaultLayout()
	if cfg == (config.LayoutConfig{}) {
		return l
	}
	l.Team.Index = cfg.TeamTable
	l.Competitors.Index = cfg.CompetitorTable
	l.Funding.Index = cfg.FundingTable
	return l
}

// metricRule maps a metric block label to a profile field. Matching is by
// substring and not exclusive: a block may feed several fields.
type metricRule struct {
	label string
	strip string
	set   func(p *models.CompanyProfile, v string)
}

var metricRules = []metricRule{
	{label: "Total Funding", set: func(p *models.CompanyProfile, v string) { p.Funding = v }},
	{label: "Number of Employees", strip: ",", set: func(p *models.CompanyProfile, v string) { p.Employees = v }},
	{label: "Revenue (est)", set: func(p *models.CompanyProfile, v string) { p.Revenue = v }},
	{label: "Employee Growth %", strip: "%", set: func(p *models.CompanyProfile, v string) { p.EmployeeGrowth = v }},
	{label: "Valuation", set: func(p *models.CompanyProfile, v string) { p.Valuation = v }},
}
