// Package export writes a job's lead set to spreadsheet formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// header is the exported column order, shared by both formats.
var header = []string{
	"company_name", "company_domain", "company_website", "company_phone",
	"company_email", "contact_email", "street", "city", "state", "country",
	"zip_code", "rating", "review_count", "lead_score", "intent_score",
	"source", "email_found", "is_enriched",
}

func leadRow(l *model.Lead) []string {
	rating := ""
	if l.Rating != nil {
		rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
	}
	return []string{
		l.CompanyName, l.CompanyDomain, l.CompanyWebsite, l.CompanyPhone,
		l.CompanyEmail, l.ContactEmail, l.Street, l.City, l.State, l.Country,
		l.ZipCode, rating, strconv.Itoa(l.ReviewCount),
		strconv.Itoa(l.LeadScore), strconv.Itoa(l.IntentScore),
		l.Source, strconv.FormatBool(l.EmailFound), strconv.FormatBool(l.IsEnriched),
	}
}

// CSV writes the leads as CSV with a header row.
func CSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range leads {
		if err := cw.Write(leadRow(&leads[i])); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// XLSX writes the leads as a single-sheet workbook.
func XLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	row := sheet.AddRow()
	for _, col := range header {
		row.AddCell().Value = col
	}
	for i := range leads {
		row := sheet.AddRow()
		for _, val := range leadRow(&leads[i]) {
			row.AddCell().Value = val
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
