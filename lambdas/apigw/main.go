// The apigw lambda serves the tracker API behind API Gateway: the same
// operations as the gin server, adapted to proxy events. The source IP comes
// from the request context identity, not from headers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"rtotrack.dev/rtotrack/core"
	"rtotrack.dev/rtotrack/idempotency"
	"rtotrack.dev/rtotrack/infrastructure/devops"
	"rtotrack.dev/rtotrack/infrastructure/dynamostore"
	"rtotrack.dev/rtotrack/location"
	"rtotrack.dev/rtotrack/nager"
)

var service *core.Service

func setup(ctx context.Context) error {
	settings, err := devops.Load(ctx)
	if err != nil {
		return err
	}

	store, err := dynamostore.Connect(ctx, settings.TableName)
	if err != nil {
		return err
	}

	holidayFeed := nager.NewClient("")
	countries := core.NewCountryTable(holidayFeed)
	if err := countries.Reload(ctx); err != nil {
		return err
	}

	cache := idempotency.New(settings.CacheTTL())
	service = core.NewService(
		store,
		core.NewGeoResolver(location.NewClient(""), cache),
		core.NewHolidayEnricher(holidayFeed, countries, cache),
		settings.OfficeIPs,
	)
	return nil
}

func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if service == nil {
		if err := setup(ctx); err != nil {
			log.Printf("[ERROR] setup failed: %v", err)
			return respond(http.StatusInternalServerError, map[string]string{"message": "setup failed"}), nil
		}
	}

	sourceIP := req.RequestContext.Identity.SourceIP
	segments := splitPath(req.Path)

	switch {
	case req.HTTPMethod == http.MethodPut && matches(segments, "dashboard"):
		return createDashboard(ctx, req.Body, sourceIP), nil
	case req.HTTPMethod == http.MethodGet && matches(segments, "dashboard", "*"):
		return getDashboard(ctx, segments[1]), nil
	case req.HTTPMethod == http.MethodGet && matches(segments, "dashboard", "*", "*", "*"):
		return getMonth(ctx, segments[1], segments[2], segments[3]), nil
	case req.HTTPMethod == http.MethodPost && matches(segments, "checkin", "*"):
		return checkIn(ctx, segments[1], sourceIP), nil
	case req.HTTPMethod == http.MethodGet && matches(segments, "stats", "*", "*", "*"):
		return getStats(ctx, segments[1], segments[2], segments[3]), nil
	}

	return respond(http.StatusNotFound, map[string]string{"message": "not found"}), nil
}

func createDashboard(ctx context.Context, body, sourceIP string) events.APIGatewayProxyResponse {
	var payload struct {
		Timezone string `json:"timezone"`
	}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			return respond(http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		}
	}

	base, err := service.Onboard(ctx, payload.Timezone, sourceIP)
	switch {
	case errors.Is(err, core.ErrInvalidTimezone):
		return respond(http.StatusUnprocessableEntity, map[string]string{"error": "Invalid timezone"})
	case err != nil:
		return errorResponse(err)
	}
	return respond(http.StatusOK, base)
}

func getDashboard(ctx context.Context, guid string) events.APIGatewayProxyResponse {
	base, err := service.GetBase(ctx, guid)
	if err != nil {
		return errorResponse(err)
	}
	return respond(http.StatusOK, base)
}

func getMonth(ctx context.Context, guid, yearStr, monthStr string) events.APIGatewayProxyResponse {
	year, month, err := parseYearMonth(yearStr, monthStr)
	if err != nil {
		return respond(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	record, err := service.GetMonth(ctx, guid, year, month)
	if err != nil {
		return errorResponse(err)
	}
	return respond(http.StatusOK, record)
}

func checkIn(ctx context.Context, guid, sourceIP string) events.APIGatewayProxyResponse {
	status, err := service.CheckIn(ctx, guid, sourceIP)
	if err != nil {
		return errorResponse(err)
	}
	if status == core.CheckInAlreadyRecorded {
		return respond(http.StatusAccepted, map[string]string{"status": "already recorded"})
	}
	return respond(http.StatusOK, map[string]string{"status": "ok"})
}

func getStats(ctx context.Context, guid, yearStr, monthStr string) events.APIGatewayProxyResponse {
	year, month, err := parseYearMonth(yearStr, monthStr)
	if err != nil {
		return respond(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	stats, err := service.Stats(ctx, guid, year, month)
	if err != nil {
		return errorResponse(err)
	}
	return respond(http.StatusOK, stats)
}

func errorResponse(err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, core.ErrUserNotFound), errors.Is(err, core.ErrRecordNotFound):
		return respond(http.StatusNotFound, map[string]string{"message": "not found"})
	case errors.Is(err, core.ErrInvalidCalendarInput):
		return respond(http.StatusBadRequest, map[string]string{"message": err.Error()})
	case errors.Is(err, core.ErrGeolocationUnavailable), errors.Is(err, core.ErrUnknownCountry):
		log.Printf("[ERROR] collaborator failure: %v", err)
		return respond(http.StatusBadGateway, map[string]string{"message": err.Error()})
	}
	log.Printf("[ERROR] %v", err)
	return respond(http.StatusInternalServerError, map[string]string{"message": "internal error"})
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("[ERROR] failed to marshal response: %v", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

func parseYearMonth(yearStr, monthStr string) (int, int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q", monthStr)
	}
	return year, month, nil
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// matches compares path segments against a pattern where "*" accepts any
// value.
func matches(segments []string, pattern ...string) bool {
	if len(segments) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && segments[i] != p {
			return false
		}
	}
	return true
}

func main() {
	lambda.Start(handleRequest)
}
