// Command worker applies order events from Kafka to the dispatch store.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"courier-dispatch/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.MustBuildWorkerContainer(ctx)
	app.NewWorkerRunner().MustRun(container)
}
