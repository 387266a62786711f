package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entities"
)

// StatusCommand prints the cache state of every list.
type StatusCommand struct {
	base
}

func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the cache database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s status [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show cached counts, favourites and last refresh per list.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatusCommand) Run() error {
	ctx := context.Background()

	core, err := cmd.openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	table := tablewriter.NewWriter(cmd.out())
	table.Header("List", "Cached", "Favourites", "More", "Last refresh")

	for _, label := range entities.AllLabels {
		cached, err := core.DB.Count(ctx, label)
		if err != nil {
			return err
		}
		favourites, err := core.DB.GetFavouriteCount(ctx, label)
		if err != nil {
			return err
		}
		bookmark, err := core.Store.Bookmark(ctx, label)
		if err != nil {
			return err
		}
		last, err := core.Clock.LastSyncTime(ctx, label)
		if err != nil {
			return err
		}

		more := "no"
		if bookmark.HasNext() {
			more = "yes"
		}
		lastRefresh := "never"
		if last != nil {
			lastRefresh = humanize.Time(*last)
		}

		if err := table.Append([]string{
			label.String(),
			strconv.FormatInt(cached, 10),
			strconv.FormatInt(favourites, 10),
			more,
			lastRefresh,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
