// seed inserts a demo user into a MySQL tracker store for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"rtotrack.dev/rtotrack/core"
	"rtotrack.dev/rtotrack/core/models"
	"rtotrack.dev/rtotrack/infrastructure/gormstore"
)

var DSN = "root:development@tcp(localhost:3306)/development?parseTime=true"

func main() {
	dsn := os.Getenv("DSN")
	if dsn == "" {
		dsn = DSN
	}

	store, err := gormstore.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	timezone := "Australia/Sydney"
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}
	now := time.Now().In(loc)

	base := core.NewBaseRecord(uuid.NewString(), timezone, now)
	base.Country = "Australia"
	base.County = "AU-NSW"
	base.OfficeIPs = []string{"127.0.0.1", "10.0.0.1"}
	base.Holidays = map[string]models.HolidayEntry{
		fmt.Sprintf("%d-12-25", now.Year()): {Name: "Christmas Day", IsGlobal: true},
		fmt.Sprintf("%d-01-26", now.Year()): {Name: "Australia Day", IsGlobal: true},
	}

	month, err := core.BuildMonthRecord(base, now.Year(), int(now.Month()))
	if err != nil {
		log.Fatalf("failed to build month record: %v", err)
	}

	ctx := context.Background()
	if err := store.PutBase(ctx, base); err != nil {
		log.Fatalf("failed to write base record: %v", err)
	}
	if err := store.PutMonth(ctx, month); err != nil {
		log.Fatalf("failed to write month record: %v", err)
	}

	fmt.Printf("Seeded user %s (%s)\n", base.ID, base.Timezone)
}
