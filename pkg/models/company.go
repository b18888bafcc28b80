// Package models defines the core data structures used throughout startuplens.
package models

// NotAvailable is the sentinel substituted for any text field that could
// not be extracted. Consumers never branch on field presence.
const NotAvailable = "N/A"

// CompanyProfile is the structured view of a company-data page.
type CompanyProfile struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Industry       string `json:"industry"`
	Website        string `json:"website"`
	Employees      string `json:"employees"`       // thousands separators stripped, still text
	Revenue        string `json:"revenue"`         // e.g. "$1.2M"
	EmployeeGrowth string `json:"employee_growth"` // percent sign stripped
	Valuation      string `json:"valuation"`
	Funding        string `json:"funding"`

	FundingRounds []FundingRound `json:"funding_rounds"`
	Competitors   []Competitor   `json:"competitors"`
	TeamMembers   []TeamMember   `json:"team_members"`

	SourceURL string `json:"source_url"`
}

// NewCompanyProfile returns a profile with every text field set to the
// sentinel and every list empty (never nil, so JSON renders []).
func NewCompanyProfile(sourceURL string) *CompanyProfile {
	return &CompanyProfile{
		Name:           NotAvailable,
		Location:       NotAvailable,
		Industry:       NotAvailable,
		Website:        NotAvailable,
		Employees:      NotAvailable,
		Revenue:        NotAvailable,
		EmployeeGrowth: NotAvailable,
		Valuation:      NotAvailable,
		Funding:        NotAvailable,
		FundingRounds:  []FundingRound{},
		Competitors:    []Competitor{},
		TeamMembers:    []TeamMember{},
		SourceURL:      sourceURL,
	}
}

// FundingRound is a single row of the funding history table.
type FundingRound struct {
	Date         string `json:"date"` // YYYY-MM-DD when parseable, verbatim otherwise
	Amount       string `json:"amount"`
	Round        string `json:"round"`
	LeadInvestor string `json:"lead_investor"`
	ArticleLink  string `json:"article_link"`
}

// Competitor is a single row of the competitor comparison table.
type Competitor struct {
	Name      string `json:"name"`
	Revenue   string `json:"revenue"`
	Employees string `json:"employees"`
	Growth    string `json:"growth"`
	Funding   string `json:"funding"`
	Valuation string `json:"valuation"`
}

// ContactStatus records the outcome of resolving a team member's external
// contact link.
type ContactStatus string

const (
	ContactResolved    ContactStatus = "resolved"     // link found on the employee page
	ContactNotPresent  ContactStatus = "not_present"  // page fetched, no link on it
	ContactFetchFailed ContactStatus = "fetch_failed" // network or HTTP failure
	ContactSkipped     ContactStatus = "skipped"      // no employee page to visit
)

// TeamMember is a single row of the team roster.
type TeamMember struct {
	Name          string        `json:"name"`
	Role          string        `json:"role"`
	LinkedInURL   *string       `json:"linkedin_url"`
	EmployeeURL   *string       `json:"employee_url"`
	ContactStatus ContactStatus `json:"contact_status"`
}
