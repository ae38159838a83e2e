// The sync-closures lambda merges office-closure spreadsheets from S3 into
// every user's stored holiday set, so newly created month rows exclude those
// days from the attendance denominator. Existing month rows are not rewritten.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/xuri/excelize/v2"

	"rtotrack.dev/rtotrack/infrastructure/communication"
	"rtotrack.dev/rtotrack/infrastructure/devops"
	"rtotrack.dev/rtotrack/infrastructure/dynamostore"
	"rtotrack.dev/rtotrack/infrastructure/filesystem"
)

type SyncEvent struct {
	DryRun bool `json:"dryRun"`
}

type SyncStats struct {
	Files   int `json:"files"`
	Days    int `json:"days"`
	Users   int `json:"users"`
	Updated int `json:"updated"`
}

func loadClosures(ctx context.Context, bucket string) ([]ClosureDay, int, error) {
	keys, err := filesystem.ListFiles(ctx, bucket, ".xlsx")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list closure sheets: %w", err)
	}

	var closures []ClosureDay
	files := 0
	for _, key := range keys {
		fmt.Printf("[INFO] Processing file: %s\n", key)

		var buf bytes.Buffer
		if err := filesystem.ReadFile(ctx, bucket, key, &buf); err != nil {
			fmt.Printf("[ERROR] failed to read file %s: %v\n", key, err)
			continue
		}

		f, err := excelize.OpenReader(&buf)
		if err != nil {
			fmt.Printf("[ERROR] failed to open excel file %s: %v\n", key, err)
			continue
		}

		parsed, err := ParseClosureSheet(f)
		f.Close()
		if err != nil {
			fmt.Printf("[ERROR] failed to parse file %s: %v\n", key, err)
			continue
		}

		closures = append(closures, parsed...)
		files++
	}

	return closures, files, nil
}

func SyncClosures(ctx context.Context, settings *devops.Settings, dryRun bool) (SyncStats, error) {
	closures, files, err := loadClosures(ctx, settings.ClosuresBucket)
	if err != nil {
		return SyncStats{}, err
	}
	stats := SyncStats{Files: files, Days: len(closures)}
	fmt.Printf("[INFO] Loaded %d closure days from %d files\n", stats.Days, stats.Files)

	store, err := dynamostore.Connect(ctx, settings.TableName)
	if err != nil {
		return stats, fmt.Errorf("failed to open tracker store: %w", err)
	}

	users, err := store.ScanBaseRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list users: %w", err)
	}
	stats.Users = len(users)

	for i := range users {
		base := &users[i]
		added := MergeClosures(base, closures)
		if added == 0 {
			continue
		}

		fmt.Printf("[INFO] user %s: %d closure days to add (dry run: %v)\n", base.ID, added, dryRun)
		if dryRun {
			continue
		}
		if err := store.PutBase(ctx, base); err != nil {
			fmt.Printf("[ERROR] failed to update user %s: %v\n", base.ID, err)
			continue
		}
		stats.Updated++
	}

	return stats, nil
}

func HandleRequest(ctx context.Context, event SyncEvent) (SyncStats, error) {
	settings, err := devops.Load(ctx)
	if err != nil {
		return SyncStats{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.ClosuresBucket == "" {
		return SyncStats{}, fmt.Errorf("no closures bucket configured")
	}

	stats, err := SyncClosures(ctx, settings, event.DryRun)

	notifier := communication.ConnectSlack()
	if err != nil {
		_ = notifier.Error(fmt.Sprintf("closure sync failed: %v", err))
		return stats, err
	}
	_ = notifier.Info(fmt.Sprintf(
		"closure sync: %d days from %d files, %d/%d users updated (dry run: %v)",
		stats.Days, stats.Files, stats.Updated, stats.Users, event.DryRun))

	return stats, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	stats, err := HandleRequest(context.Background(), SyncEvent{DryRun: true})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[SUCCESS] %+v\n", stats)
}
