package main

import (
	"context"
	"log"

	"rtotrack.dev/rtotrack/core"
	"rtotrack.dev/rtotrack/idempotency"
	"rtotrack.dev/rtotrack/infrastructure/devops"
	"rtotrack.dev/rtotrack/infrastructure/dynamostore"
	"rtotrack.dev/rtotrack/infrastructure/gormstore"
	"rtotrack.dev/rtotrack/location"
	"rtotrack.dev/rtotrack/nager"
	"rtotrack.dev/rtotrack/web/handlers"
)

func main() {
	ctx := context.Background()
	settings := devops.FromEnv()

	var store core.TrackerStore
	var err error
	if settings.DSN != "" {
		log.Printf("using MySQL tracker store")
		store, err = gormstore.Open(settings.DSN)
	} else {
		log.Printf("using DynamoDB tracker store, table %s", settings.TableName)
		store, err = dynamostore.Connect(ctx, settings.TableName)
	}
	if err != nil {
		log.Fatalf("failed to open tracker store: %v", err)
	}

	holidayFeed := nager.NewClient("")
	countries := core.NewCountryTable(holidayFeed)
	if err := countries.Reload(ctx); err != nil {
		log.Fatalf("failed to load country table: %v", err)
	}

	cache := idempotency.New(settings.CacheTTL())
	service := core.NewService(
		store,
		core.NewGeoResolver(location.NewClient(""), cache),
		core.NewHolidayEnricher(holidayFeed, countries, cache),
		settings.OfficeIPs,
	)

	r := handlers.NewRouter(service, append([]string{settings.CORSOrigin}, settings.ExtraOrigins...))
	r.Run("0.0.0.0:8090")
}
