package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/tasks"
)

// SyncCommand refreshes a list and appends further pages.
type SyncCommand struct {
	base
	Label   entities.Label
	Pages   int
	Timeout time.Duration
	URL     string
}

func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	var label string
	fs.StringVar(&label, "label", "", "List to sync: persons, starships or planets (required)")
	fs.IntVar(&cmd.Pages, "pages", 1, "Number of pages to fetch, the first one being a refresh")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Overall timeout for the sync")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the cache database")
	fs.StringVar(&cmd.URL, "url", "", "GraphQL endpoint (defaults to SWAPI_URL)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync -label <label> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace the cached list with the first remote page, then append pages\n")
		fmt.Fprintf(os.Stderr, "until -pages pages are cached or the remote list ends.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -label planets -pages 3\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	parsed, err := parseLabelFlag(label)
	if err != nil {
		return err
	}
	cmd.Label = parsed

	if cmd.Pages <= 0 {
		return fmt.Errorf("-pages must be positive, got %d", cmd.Pages)
	}
	return nil
}

func (cmd *SyncCommand) Run() error {
	out := cmd.out()

	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}
	if cmd.URL != "" {
		cfg.Remote.URL = cmd.URL
	}
	core, err := newCore(cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	start := time.Now()
	fetched, err := tasks.SyncPages(ctx, core.Pager, cmd.Label, cmd.Pages)
	if err != nil {
		return err
	}

	count, err := core.DB.Count(ctx, cmd.Label)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Synced %s: fetched %d items, %d cached (%s)\n",
		cmd.Label, fetched, count, time.Since(start).Round(time.Millisecond))
	return nil
}
