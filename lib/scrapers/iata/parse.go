package iata

import (
	"bytes"

	"iata-code-fetcher/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Record maps the result table's column headers to one row's cell
// values, e.g. {"Company name": ..., "Country / Territory": ...,
// "2-letter code": ...}.
type Record map[string]string

// parseRecords extracts the publication result table from a response
// body. Markup without a `table.datatable`, or with one that has no
// usable header row, yields no records; a malformed page is
// indistinguishable from an unassigned code and is never an error.
func parseRecords(body []byte) []Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	table := doc.Find("table.datatable").First()
	if table.Length() == 0 {
		return nil
	}

	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		// some result blocks omit thead and put the header cells in
		// the first row
		headerRow = table.Find("tr").First()
	}
	var headers []string
	headerRow.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, htmlutil.CellText(cell))
	})
	if len(headers) == 0 {
		return nil
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	// the html parser wraps bare trs in an implicit tbody, so the
	// header row can show up among the data rows; skip it by node
	// identity rather than by position
	headerNode := headerRow.Get(0)

	var records []Record
	rows.Each(func(_ int, row *goquery.Selection) {
		if len(row.Nodes) > 0 && row.Nodes[0] == headerNode {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		record := Record{}
		for i := 0; i < cells.Length() && i < len(headers); i++ {
			record[headers[i]] = htmlutil.CellText(cells.Eq(i))
		}
		records = append(records, record)
	})
	return records
}
