package main

import (
	"context"
	"log/slog"
	"os"

	"iata-code-fetcher/cmd/iata-cli/commands"
	"iata-code-fetcher/lib/serviceutil"
	"iata-code-fetcher/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	// telemetry is optional for a crawl: without a telemetry.json5 the
	// CLI still runs, it just exports nothing
	tel, err := telemetry.SetupFromEnv(ctx, "iata-cli")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if err == nil {
		defer tel.Shutdown(context.Background())
	} else {
		slog.Debug("no telemetry.json5 found, telemetry disabled")
	}

	commands.ExecuteContext(ctx)
}
