// Package iata fetches published airline and airport designator
// records from the IATA publication search pages.
package iata

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"sync"
	"time"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/restyutil"
	"iata-code-fetcher/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/iata")

const DefaultSearchUrl = "https://www.iata.org/PublicationDetails/Search/"

// the identifier of the publication page hosting both search blocks
const publicationPage = "12572"

const (
	carrierBlock = "314383"
	airportBlock = "314384"
)

type Client struct {
	http        *resty.Client
	searchUrl   string
	minInterval time.Duration

	// serializes requests so at most one is in flight and consecutive
	// requests are spaced at least minInterval apart
	mu          sync.Mutex
	lastRequest time.Time
}

type ClientOptions struct {
	// SearchUrl overrides the production publication search page.
	SearchUrl string
	// MinInterval is the mandatory delay between consecutive requests.
	// Defaults to one second, the publication site's acceptable-use
	// pace.
	MinInterval time.Duration
	// Timeout defaults to 20 seconds.
	Timeout time.Duration
	// RetryCount is the number of additional attempts after a failed
	// request. Zero means a failed code is skipped outright.
	RetryCount int
	// RetryWait defaults to 15 seconds when RetryCount is set.
	RetryWait time.Duration
	// InstrumentOutput receives request/response transcripts when set.
	InstrumentOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	searchUrl := opts.SearchUrl
	if searchUrl == "" {
		searchUrl = DefaultSearchUrl
	}
	minInterval := opts.MinInterval
	if minInterval == 0 {
		minInterval = time.Second
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 20
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(timeout)

	if opts.RetryCount > 0 {
		retryWait := opts.RetryWait
		if retryWait == 0 {
			retryWait = time.Second * 15
		}
		client.SetRetryCount(opts.RetryCount)
		client.SetRetryWaitTime(retryWait)
	}

	telemetry.InstrumentResty(client, "scrapers/iata/http")
	restyutil.InstrumentClient(client, opts.InstrumentOutput)

	return &Client{
		http:        client,
		searchUrl:   searchUrl,
		minInterval: minInterval,
	}, nil
}

func searchBlock(kind codes.Kind) (block, param string) {
	if kind == codes.Carrier {
		return carrierBlock, "airline.search"
	}
	return airportBlock, "airport.search"
}

// Search fetches the publication page for a single code and returns
// the records of the result table. A page without a result table
// means the code is unassigned: the return is (nil, nil), not an
// error. Transport failures and non-2xx statuses are errors.
func (c *Client) Search(ctx context.Context, kind codes.Kind, code string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "client:Search", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("code", code),
	))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}
	defer func() {
		c.lastRequest = time.Now()
	}()

	block, param := searchBlock(kind)
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("currentBlock", block).
		SetQueryParam("currentPage", publicationPage).
		SetQueryParam(param, code).
		Get(c.searchUrl)
	if err != nil {
		span.SetStatus(otelcodes.Error, "request failed")
		return nil, fmt.Errorf("search %s %q: %w", kind, code, err)
	}
	if res.IsError() {
		span.SetStatus(otelcodes.Error, "unexpected status")
		return nil, fmt.Errorf("search %s %q: unexpected status %s", kind, code, res.Status())
	}

	records := parseRecords(res.Body())
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// waitTurn blocks until minInterval has elapsed since the previous
// request, or the context is canceled. Callers hold c.mu.
func (c *Client) waitTurn(ctx context.Context) error {
	wait := c.minInterval - time.Since(c.lastRequest)
	if c.lastRequest.IsZero() || wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
