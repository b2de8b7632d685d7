package exporter

import (
	"time"

	"gnecli/pkg/contracts"
	"gnecli/pkg/contracts/domain"
)

// Report text shared by the text and workbook renderings.
const (
	ReportTitle    = "GnE Results"
	ProgramNotice  = "Program code released by Richardson Oliver Insights under CC-BY-SA 40 license. Find out how to contribute and help Diversity Equity and Inclusion initiatives in the inventor base and download/updates at:"
	ProgramURL     = "https://roipatents.com/"
	PledgeNotice   = "Learn about the Diversity Pledge at:"
	PledgeURL      = "https://increasingdii.org/"
	TextDateLayout = "January 2, 2006"
)

// RowKind selects how a report row renders its total.
type RowKind int

const (
	RowCount     RowKind = iota // integer total, no percentage
	RowPercent                  // integer total and percentage
	RowFractional               // real-valued total
	RowBlank                    // spacer
)

// Row is one line of a report section.
type Row struct {
	Kind       RowKind
	Item       string
	Count      int
	Percentage float64
	Total      float64
	Comment    string
}

// Section is a titled block of rows.
type Section struct {
	Title   string
	Percent bool
	Rows    []Row
}

// Report is the rendered-independent content of a summary.
type Report struct {
	Generated  time.Time
	Dictionary string
	DataSource string
	Columns    string
	Sections   []Section
}

// ColumnsUsed renders the "Columns Used" line from per-column descriptions.
func ColumnsUsed(firstName, countryCode, disclosureID, personID string) string {
	return "First Name = " + firstName +
		", Country Code = " + countryCode +
		", Disclosure ID = " + disclosureID +
		", Person ID = " + personID
}

func countRow(item string, n int, comment string) Row {
	return Row{Kind: RowCount, Item: item, Count: n, Comment: comment}
}

func percentRow(item string, c domain.CountAndPercentage, comment string) Row {
	return Row{Kind: RowPercent, Item: item, Count: c.Count, Percentage: c.Percentage, Comment: comment}
}

func fractionalRow(item string, total float64) Row {
	return Row{Kind: RowFractional, Item: item, Total: total}
}

// BuildReport lays out the summary sections for a finished run.
func BuildReport(s domain.SummarySnapshot, generated time.Time, dataSource, columns string) Report {
	rate := s.InventorRate
	out := s.DisclosureOutput
	frac := s.FractionalInventorship

	return Report{
		Generated:  generated,
		Dictionary: contracts.DictionaryName,
		DataSource: dataSource,
		Columns:    columns,
		Sections: []Section{
			{
				Title: "Basic Counts",
				Rows: []Row{
					countRow("Number of Patents/Apps/Disclosures", s.UniqueDisclosures, "Number of distinct disclosures/patents/applications listed"),
					countRow("Number of Unique Inventors", s.UniquePeople, "Looks for inventor uniqueness based on provided email addresses/employee identifiers"),
					countRow("Number of Total Inventors", s.RowCount, "Total number of listed inventors, e.g. each instance of Jane Doe counts"),
				},
			},
			{
				Title:   "Women Inventor Rate Estimate",
				Percent: true,
				Rows: []Row{
					percentRow("Number of Unique Inventors: All", rate.All, ""),
					percentRow("Number of Unique Inventors: Women", rate.Women, ""),
					percentRow("Number of Unique Inventors: Men", rate.Men, ""),
					percentRow("Number of Unique Inventors: Undetermined", rate.Undetermined, ""),
				},
			},
			{
				Title:   "Patent Output Estimate",
				Percent: true,
				Rows: []Row{
					percentRow("Number of Disclosures/Patents/Apps: All", out.All, ""),
					percentRow("Number with at Least one Woman Inventor", out.AtLeastOneWoman, ""),
					percentRow("Number with at Least one Man Inventor", out.AtLeastOneMan, ""),
					percentRow("Number with at Least one Undetermined Inventor", out.AtLeastOneUndetermined, ""),
					{Kind: RowBlank},
					percentRow("Number with Solo Woman Inventor", out.SoloWoman, "Only counts patents/apps/disclosures with a single inventor who is estimated to be a woman"),
					percentRow("Number with Solo Man Inventor", out.SoloMan, "Only counts patents/apps/disclosures with a single inventor who is estimated to be a man"),
				},
			},
			{
				Title: "Fractional Inventorship Rate Estimate",
				Rows: []Row{
					fractionalRow("Number of Disclosures/Patents/Apps: All", frac.All),
					fractionalRow("Weighted Count of Disclosures: Women", frac.Women),
					fractionalRow("Weighted Count of Disclosures: Men", frac.Men),
					fractionalRow("Weighted Count of Disclosures: Undetermined", frac.Undetermined),
				},
			},
		},
	}
}
