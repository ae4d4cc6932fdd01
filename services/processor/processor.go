// Package processor turns a raw crawl output file into a clean
// dataset: the file is deduplicated in place, then its records are
// renamed to snake_case fields, sorted and written alongside it.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/jsonl"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/processor")

// column headers of the publication result tables
const (
	carrierCodeColumn    = "2-letter code"
	carrierCountryColumn = "Country / Territory"
	carrierCompanyColumn = "Company name"

	airportCodeColumn = "3-letter location code"
	airportCityColumn = "City Name"
	airportNameColumn = "Airport Name"
)

type CarrierRecord struct {
	Iata               string `json:"iata"`
	CountryOrTerritory string `json:"country_or_territory"`
	CompanyName        string `json:"company_name"`
}

type AirportRecord struct {
	Iata        string `json:"iata"`
	CityName    string `json:"city_name"`
	AirportName string `json:"airport_name"`
}

type Summary struct {
	LinesBefore int
	LinesAfter  int
	Records     int
	OutputPath  string
}

// OutputPath derives the processed-file name from the raw one:
// carrier_data_full.jsonl becomes carrier_data_full_processed.jsonl.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_processed" + ext
}

// Process deduplicates the raw file in place, then writes the typed,
// uniquely sorted dataset next to it. Idempotent over both files.
func Process(ctx context.Context, kind codes.Kind, path string) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Process", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("path", path),
	))
	defer span.End()

	before, after, err := jsonl.DedupeFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("dedupe %s: %w", path, err)
	}
	slog.InfoContext(ctx, "deduplicated", "path", path, "before", before, "after", after)

	raw, err := jsonl.ReadAll[map[string]string](path)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		LinesBefore: before,
		LinesAfter:  after,
		OutputPath:  OutputPath(path),
	}

	switch kind {
	case codes.Carrier:
		records := carrierRecords(raw)
		summary.Records = len(records)
		err = jsonl.WriteAll(summary.OutputPath, records)
	case codes.Airport:
		records := airportRecords(raw)
		summary.Records = len(records)
		err = jsonl.WriteAll(summary.OutputPath, records)
	default:
		err = fmt.Errorf("unknown code class %d", kind)
	}
	if err != nil {
		return Summary{}, err
	}

	slog.InfoContext(ctx, "processed", "path", summary.OutputPath, "records", summary.Records)
	return summary, nil
}

func carrierRecords(raw []map[string]string) []CarrierRecord {
	records := make([]CarrierRecord, 0, len(raw))
	for _, row := range raw {
		records = append(records, CarrierRecord{
			Iata:               row[carrierCodeColumn],
			CountryOrTerritory: row[carrierCountryColumn],
			CompanyName:        row[carrierCompanyColumn],
		})
	}
	slices.SortFunc(records, func(a, b CarrierRecord) int {
		if c := strings.Compare(a.Iata, b.Iata); c != 0 {
			return c
		}
		if c := strings.Compare(a.CountryOrTerritory, b.CountryOrTerritory); c != 0 {
			return c
		}
		return strings.Compare(a.CompanyName, b.CompanyName)
	})
	return slices.Compact(records)
}

func airportRecords(raw []map[string]string) []AirportRecord {
	records := make([]AirportRecord, 0, len(raw))
	for _, row := range raw {
		records = append(records, AirportRecord{
			Iata:        row[airportCodeColumn],
			CityName:    row[airportCityColumn],
			AirportName: row[airportNameColumn],
		})
	}
	slices.SortFunc(records, func(a, b AirportRecord) int {
		if c := strings.Compare(a.Iata, b.Iata); c != 0 {
			return c
		}
		if c := strings.Compare(a.CityName, b.CityName); c != 0 {
			return c
		}
		return strings.Compare(a.AirportName, b.AirportName)
	})
	return slices.Compact(records)
}
