package http

import (
	"github.com/nats-io/nats.go"

	"github.com/nmoreno/fiestero/internal/adapters/postgres"
	"github.com/nmoreno/fiestero/internal/adapters/valkey"
	"github.com/nmoreno/fiestero/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Catalog      *usecases.CatalogService
	Zones        *usecases.ZoneService
	Quotes       *usecases.QuoteService
	Carts        *usecases.CartService
	Reservations *usecases.ReservationService
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
