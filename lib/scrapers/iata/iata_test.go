package iata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const carrierTable = `
<html><body>
<table class="datatable">
    <thead>
    <tr>
            <td>Company name</td>
            <td>Country / Territory</td>
            <td>2-letter code</td>
    </tr>
    </thead>
    <tbody>
        <tr>
                <td>BONZA AVIATION PTY LTD</td>
                <td>Australia</td>
                <td>AB</td>
        </tr>
        <tr>
                <td>West Atlantic Sweden AB</td>
                <td>Sweden</td>
                <td>T2</td>
        </tr>
    </tbody>
</table>
</body></html>
`

const airportTable = `
<html><body>
<table class="datatable">
    <thead>
    <tr>
            <td>City Name</td>
            <td>Airport Name</td>
            <td>3-letter location code</td>
    </tr>
    </thead>
    <tbody>
        <tr>
                <td>Anaa</td>
                <td>Anaa Airport</td>
                <td>AAA</td>
        </tr>
    </tbody>
</table>
</body></html>
`

const emptyPage = `<html><body><p>Your search did not return any results.</p></body></html>`

func newSearchServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("airline.search") == "AA":
			w.Write([]byte(carrierTable))
		case q.Get("airport.search") == "AAA":
			w.Write([]byte(airportTable))
		case q.Get("airline.search") == "ER", q.Get("airport.search") == "ERR":
			http.Error(w, "upstream broke", http.StatusInternalServerError)
		default:
			w.Write([]byte(emptyPage))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, url string) *Client {
	client, err := NewClient(ClientOptions{
		SearchUrl:   url,
		MinInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestSearchCarrier(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/iata")
	defer cleanup()

	server := newSearchServer(t)
	client := newTestClient(t, server.URL)

	records, err := client.Search(context.Background(), codes.Carrier, "AA")
	require.NoError(t, err)

	want := []Record{
		{
			"Company name":        "BONZA AVIATION PTY LTD",
			"Country / Territory": "Australia",
			"2-letter code":       "AB",
		},
		{
			"Company name":        "West Atlantic Sweden AB",
			"Country / Territory": "Sweden",
			"2-letter code":       "T2",
		},
	}
	require.Empty(t, cmp.Diff(want, records))
}

func TestSearchAirport(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/iata")
	defer cleanup()

	server := newSearchServer(t)
	client := newTestClient(t, server.URL)

	records, err := client.Search(context.Background(), codes.Airport, "AAA")
	require.NoError(t, err)

	want := []Record{
		{
			"City Name":             "Anaa",
			"Airport Name":          "Anaa Airport",
			"3-letter location code": "AAA",
		},
	}
	require.Empty(t, cmp.Diff(want, records))
}

func TestSearchNoRecord(t *testing.T) {
	server := newSearchServer(t)
	client := newTestClient(t, server.URL)

	records, err := client.Search(context.Background(), codes.Carrier, "ZZ")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSearchErrorStatus(t *testing.T) {
	server := newSearchServer(t)
	client := newTestClient(t, server.URL)

	_, err := client.Search(context.Background(), codes.Carrier, "ER")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}

func TestSearchThrottles(t *testing.T) {
	server := newSearchServer(t)
	client, err := NewClient(ClientOptions{
		SearchUrl:   server.URL,
		MinInterval: 150 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now()
	_, err = client.Search(ctx, codes.Carrier, "AA")
	require.NoError(t, err)
	_, err = client.Search(ctx, codes.Carrier, "AB")
	require.NoError(t, err)

	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestSearchCancelDuringThrottle(t *testing.T) {
	server := newSearchServer(t)
	client, err := NewClient(ClientOptions{
		SearchUrl:   server.URL,
		MinInterval: time.Minute,
	})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), codes.Carrier, "AA")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Search(ctx, codes.Carrier, "AB")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseRecordsMalformed(t *testing.T) {
	require.Nil(t, parseRecords([]byte("<table class=\"datatable\"><thead></thead></table>")))
	require.Nil(t, parseRecords([]byte("not html at all")))
	require.Nil(t, parseRecords(nil))
}

func TestParseRecordsNoTbody(t *testing.T) {
	// the html parser wraps bare trs in an implicit tbody; the header
	// row must still not come back as a data record
	records := parseRecords([]byte(`
		<table class="datatable">
			<tr><td>Code</td><td>Name</td></tr>
			<tr><td>AA</td><td>Example Air</td></tr>
		</table>
	`))
	require.Equal(t, []Record{{"Code": "AA", "Name": "Example Air"}}, records)
}

func TestParseRecordsHeaderInsideTbody(t *testing.T) {
	records := parseRecords([]byte(`
		<table class="datatable">
			<tbody>
				<tr><td>Code</td><td>Name</td></tr>
				<tr><td>AA</td><td>Example Air</td></tr>
				<tr><td>AB</td><td>Other Air</td></tr>
			</tbody>
		</table>
	`))
	want := []Record{
		{"Code": "AA", "Name": "Example Air"},
		{"Code": "AB", "Name": "Other Air"},
	}
	require.Equal(t, want, records)
}
