//go:build wireinject
// +build wireinject

package di

import (
	"innkeep/config"
	"innkeep/infras/jwt"
	"innkeep/infras/kafka"
	"innkeep/infras/otel"
	"innkeep/infras/postgres"
	"innkeep/infras/redis"
	"innkeep/internal/app"
	bookingHandler "innkeep/internal/handlers/booking"
	roomHandler "innkeep/internal/handlers/room"
	"innkeep/internal/workers/expiry"
	"innkeep/shared/cache"
	"innkeep/shared/clock"
	"innkeep/transport/http"
	"innkeep/transport/http/middleware"
	"innkeep/transport/http/router"

	bookingRepository "innkeep/internal/domains/booking/repository"
	bookingService "innkeep/internal/domains/booking/service"
	roomRepository "innkeep/internal/domains/room/repository"
	roomService "innkeep/internal/domains/room/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	router.New,
)

var workers = wire.NewSet(
	expiry.New,
)

func InitializeService() *app.App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		workers,
		http.New,
		app.New,
	)

	return &app.App{}
}
