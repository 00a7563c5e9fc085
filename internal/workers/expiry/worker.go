package expiry

import (
	"context"
	"time"

	"innkeep/config"
	"innkeep/infras/otel"
	"innkeep/internal/domains/booking/service"
	"innkeep/shared/constant"

	"github.com/rs/zerolog/log"
)

// Worker periodically expires confirmed bookings whose end time has passed
// without a check-in.
type Worker struct {
	service service.Booking
	config  *config.Config
	otel    otel.Otel
}

func New(service service.Booking, config *config.Config, otel otel.Otel) *Worker {
	return &Worker{
		service: service,
		config:  config,
		otel:    otel,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured interval.
func (w *Worker) Run(ctx context.Context) {
	interval := time.Duration(w.config.Booking.ExpirySweepSeconds) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Starting booking expiry worker")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping booking expiry worker")

			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".ExpireBookings")
	defer scope.End()

	expired, err := w.service.ExpireDue(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("Failed to expire overdue bookings")

		return
	}

	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Expired overdue bookings")
	}
}
