// cronhelper is the client-side companion of the tracker, meant to run from
// cron on an office machine: it checks in once a day and can report the
// current month's attendance.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type config struct {
	APIURL      string `json:"api_url"`
	DashboardID string `json:"dashboard_id"`
}

func configPath() string {
	ex, err := os.Executable()
	if err != nil {
		return "rtoconfig.json"
	}
	return filepath.Join(filepath.Dir(ex), "rtoconfig.json")
}

func loadConfig(cfg *config) error {
	f, err := os.Open(configPath())
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func initConfig(cfg config) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println("Config file created successfully and saved to:")
	fmt.Println(path)
	fmt.Println("Please fill in your unique dashboard details into this file.")
	return nil
}

func checkin(client *http.Client, cfg config, noSleep bool) error {
	if !noSleep {
		// Spread cron-driven check-ins out a little.
		delay := time.Duration(rand.Intn(60)) * time.Second
		fmt.Println("Sleeping for", delay, "before checking in")
		time.Sleep(delay)
	}

	endpoint, err := url.JoinPath(cfg.APIURL, "checkin", cfg.DashboardID)
	if err != nil {
		return err
	}

	resp, err := client.Post(endpoint, "application/json", nil)
	if err != nil {
		return fmt.Errorf("checkin request failed: %w", err)
	}
	defer resp.Body.Close()

	fmt.Println("Checkin was successful with a response code of:", resp.Status)
	return nil
}

func stats(client *http.Client, cfg config) error {
	now := time.Now().Local()
	endpoint, err := url.JoinPath(cfg.APIURL, "stats", cfg.DashboardID, now.Format("2006"), now.Format("01"))
	if err != nil {
		return err
	}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("stats request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("stats request failed with status %s", resp.Status)
	}

	var body struct {
		Attendance float64 `json:"attendance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode stats response: %w", err)
	}

	fmt.Println("Your attendance is currently at", math.Floor(body.Attendance), "percent")
	return nil
}

func main() {
	var cfg config
	var action string
	var useConfig, noSleep bool

	flag.BoolVar(&useConfig, "config", false, "Use a configuration file")
	flag.StringVar(&action, "action", "checkin", "Action to perform (checkin, stats or init)")
	flag.StringVar(&cfg.APIURL, "api", "", "API Endpoint in the https://rtoapi.example.com/ format")
	flag.StringVar(&cfg.DashboardID, "id", "", "Your Dashboard Id")
	flag.BoolVar(&noSleep, "nosleep", false, "Whether to perform a random sleep before checking in")
	flag.Parse()

	if action == "init" {
		if err := initConfig(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if useConfig {
		if err := loadConfig(&cfg); err != nil {
			log.Fatal(err)
		}
	}
	if cfg.APIURL == "" {
		log.Fatal("API Endpoint is required")
	}
	if cfg.DashboardID == "" {
		log.Fatal("Dashboard Id is required")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var err error
	switch action {
	case "checkin":
		err = checkin(client, cfg, noSleep)
	case "stats":
		err = stats(client, cfg)
	default:
		err = fmt.Errorf("invalid action %q", action)
	}
	if err != nil {
		log.Fatal(err)
	}
}
