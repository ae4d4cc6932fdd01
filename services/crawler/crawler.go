// Package crawler drives a full sweep of a code class: every code is
// generated, searched and the matches appended to a JSONL file.
package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/jsonl"
	"iata-code-fetcher/lib/scrapers/iata"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/crawler")
var meter = otel.Meter("services/crawler")

var processedCounter, _ = meter.Int64Counter("codes_processed")
var matchedCounter, _ = meter.Int64Counter("codes_matched")
var failedCounter, _ = meter.Int64Counter("codes_failed")

// progress gets logged once per this many codes
const reportFrequency = 100

type Stats struct {
	Processed int
	Matched   int
	Records   int
	Failed    int
}

// Run sweeps the full code space of a class. Fetch errors are logged
// and the offending code skipped; codes without a published record
// write nothing. A write failure or context cancellation ends the run
// early with an error.
func Run(ctx context.Context, client *iata.Client, kind codes.Kind, outPath string) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("out", outPath),
	))
	defer span.End()

	kindAttr := metric.WithAttributes(attribute.String("kind", kind.String()))

	var stats Stats
	seq := kind.Codes()
	for {
		code, ok := seq.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(otelcodes.Error, "canceled")
			return stats, fmt.Errorf("crawl of %ss interrupted at %q: %w", kind, code, err)
		}

		records, err := client.Search(ctx, kind, code)
		stats.Processed++
		processedCounter.Add(ctx, 1, kindAttr)
		if stats.Processed%reportFrequency == 0 {
			slog.InfoContext(ctx, "progress",
				"kind", kind.String(),
				"processed", stats.Processed,
				"total", kind.Count(),
				"matched", stats.Matched,
				"failed", stats.Failed,
			)
		}

		if err != nil {
			if ctx.Err() != nil {
				span.SetStatus(otelcodes.Error, "canceled")
				return stats, fmt.Errorf("crawl of %ss interrupted at %q: %w", kind, code, ctx.Err())
			}
			stats.Failed++
			failedCounter.Add(ctx, 1, kindAttr)
			slog.ErrorContext(ctx, "fetch failed", "kind", kind.String(), "code", code, "err", err)
			continue
		}
		if len(records) == 0 {
			slog.DebugContext(ctx, "no record", "kind", kind.String(), "code", code)
			continue
		}

		if err := jsonl.Append(outPath, records); err != nil {
			span.SetStatus(otelcodes.Error, "write failed")
			return stats, fmt.Errorf("write %s: %w", outPath, err)
		}
		stats.Matched++
		stats.Records += len(records)
		matchedCounter.Add(ctx, 1, kindAttr)
	}

	slog.InfoContext(ctx, "crawl complete",
		"kind", kind.String(),
		"processed", stats.Processed,
		"matched", stats.Matched,
		"records", stats.Records,
		"failed", stats.Failed,
		"out", outPath,
	)
	return stats, nil
}
