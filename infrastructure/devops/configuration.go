// Package devops loads deployment settings. In AWS the settings live in a
// single SSM parameter as yaml; outside AWS (local dev, tests) they come from
// environment variables.
package devops

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"gopkg.in/yaml.v3"
)

const defaultParameterName = "rto-tracker"

// Settings are the deployment-scoped knobs of the tracker. OfficeIPs is the
// only source of check-in authorization; it never comes from user input.
type Settings struct {
	OfficeIPs       []string `yaml:"office_ips"`
	TableName       string   `yaml:"table_name"`
	DSN             string   `yaml:"dsn"`
	CORSOrigin      string   `yaml:"cors_origin"`
	ExtraOrigins    []string `yaml:"extra_origins"`
	ClosuresBucket  string   `yaml:"closures_bucket"`
	CacheTTLMinutes int      `yaml:"cache_ttl_minutes"`
}

// CacheTTL converts the configured retention window, defaulting to one hour.
func (s *Settings) CacheTTL() time.Duration {
	if s.CacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

var (
	once     sync.Once
	settings *Settings
	loadErr  error
)

// Load reads settings from the SSM parameter store, once per process. The
// parameter name can be overridden with RTO_SETTINGS_PARAMETER.
func Load(ctx context.Context) (*Settings, error) {
	once.Do(func() {
		paramName := os.Getenv("RTO_SETTINGS_PARAMETER")
		if paramName == "" {
			paramName = defaultParameterName
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("failed to get parameter %s: %w", paramName, err)
			return
		}
		if out.Parameter == nil || out.Parameter.Value == nil {
			loadErr = fmt.Errorf("parameter %s is empty", paramName)
			return
		}

		var parsed Settings
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal settings: %w", err)
			return
		}
		settings = &parsed
	})

	return settings, loadErr
}

// FromEnv builds settings from environment variables, the local-dev path.
func FromEnv() *Settings {
	s := &Settings{
		TableName:      getenv("RTO_TABLE_NAME", "rto-table"),
		DSN:            os.Getenv("DSN"),
		CORSOrigin:     getenv("CORS_ORIGIN", "https://example.com"),
		ClosuresBucket: os.Getenv("RTO_CLOSURES_BUCKET"),
	}

	for _, ip := range strings.Split(os.Getenv("OFFICE_IPS"), ",") {
		if trimmed := strings.TrimSpace(ip); trimmed != "" {
			s.OfficeIPs = append(s.OfficeIPs, trimmed)
		}
	}
	if os.Getenv("IS_DEV") != "" {
		s.ExtraOrigins = []string{"http://localhost:3000"}
	}

	return s
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
