package main

import (
	"context"
	"log/slog"

	"ticketleap-admin/cmd/ticketleap-cli/commands"
	"ticketleap-admin/lib/configutil"
	"ticketleap-admin/lib/serviceutil"
	"ticketleap-admin/lib/telemetry"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()

	err := configutil.LoadEnv()
	if err != nil {
		serviceutil.Fatal("failed to load .env", err)
	}

	t, err := telemetry.SetupFromEnv(ctx, "ticketleap-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer func() {
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()

	commands.ExecuteContext(ctx)
}
