package app

import (
	"context"

	"innkeep/internal/workers/expiry"
	"innkeep/transport/http"
)

// App bundles the HTTP server with the background workers that run
// alongside it.
type App struct {
	HTTP   *http.HTTP
	Expiry *expiry.Worker
}

func New(httpServer *http.HTTP, expiryWorker *expiry.Worker) *App {
	return &App{
		HTTP:   httpServer,
		Expiry: expiryWorker,
	}
}

// Run starts the expiry worker and serves HTTP until the process exits.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.Expiry.Run(ctx)

	a.HTTP.Serve()
}
