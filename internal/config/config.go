package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/holonet/internal/entities"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Remote
		Sync
		RefreshSchedule
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Remote struct {
		URL        string
		Timeout    time.Duration
		MaxRetries int
	}
	Sync struct {
		PageSize         int
		StalenessWindow  time.Duration
		PrefetchDistance int
		Labels           []entities.Label
	}
	RefreshSchedule struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // console or json
	}
)

// parseLabels turns a comma-separated label list into labels, skipping unknown
// entries. An empty result falls back to every label.
func parseLabels(raw string) []entities.Label {
	var labels []entities.Label
	seen := make(map[entities.Label]bool)
	for _, part := range strings.Split(raw, ",") {
		label, err := entities.ParseLabel(strings.TrimSpace(part))
		if err != nil || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return append([]entities.Label(nil), entities.AllLabels...)
	}
	return labels
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Remote GraphQL source defaults
	v.SetDefault("swapi_url", "https://swapi-graphql.netlify.app/.netlify/functions/index")
	v.SetDefault("swapi_timeout", "30s")
	v.SetDefault("swapi_max_retries", 3)

	// Sync defaults
	v.SetDefault("sync_page_size", 20)
	v.SetDefault("sync_staleness_window", "1h")
	v.SetDefault("sync_prefetch_distance", 5)
	v.SetDefault("sync_labels", "persons,starships,planets")

	v.SetDefault("refresh_schedule_enabled", false)
	v.SetDefault("refresh_schedule", "*/30 * * * *") // Every 30 minutes

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "30s")
	v.SetDefault("task_timeout", "2m")
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Remote: Remote{
			URL:        v.GetString("SWAPI_URL"),
			Timeout:    v.GetDuration("SWAPI_TIMEOUT"),
			MaxRetries: v.GetInt("SWAPI_MAX_RETRIES"),
		},
		Sync: Sync{
			PageSize:         v.GetInt("SYNC_PAGE_SIZE"),
			StalenessWindow:  v.GetDuration("SYNC_STALENESS_WINDOW"),
			PrefetchDistance: v.GetInt("SYNC_PREFETCH_DISTANCE"),
			Labels:           parseLabels(v.GetString("SYNC_LABELS")),
		},
		RefreshSchedule: RefreshSchedule{
			Enabled:  v.GetBool("REFRESH_SCHEDULE_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("SYNC_PAGE_SIZE must be positive, got %d", c.Sync.PageSize)
	}
	if c.Sync.StalenessWindow <= 0 {
		return fmt.Errorf("SYNC_STALENESS_WINDOW must be positive, got %s", c.Sync.StalenessWindow)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Tasks.Enabled && c.Tasks.Workers <= 0 {
		return fmt.Errorf("TASK_WORKERS must be positive when tasks are enabled, got %d", c.Tasks.Workers)
	}
	return nil
}
