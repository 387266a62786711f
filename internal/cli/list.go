package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entities"
)

// ListCommand prints a window of a cached list, loading pages as needed.
type ListCommand struct {
	base
	Label  entities.Label
	Offset int
	Limit  int
}

func NewListCommand() *ListCommand {
	return &ListCommand{}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	var label string
	fs.StringVar(&label, "label", "", "List to show: persons, starships or planets (required)")
	fs.IntVar(&cmd.Offset, "offset", 0, "Index of the first item to show")
	fs.IntVar(&cmd.Limit, "limit", 20, "Number of items to show")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the cache database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list -label <label> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show cached items of a list. Pages are fetched when the window\n")
		fmt.Fprintf(os.Stderr, "nears the end of what is cached.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	parsed, err := parseLabelFlag(label)
	if err != nil {
		return err
	}
	cmd.Label = parsed

	if cmd.Offset < 0 {
		return fmt.Errorf("-offset must not be negative, got %d", cmd.Offset)
	}
	if cmd.Limit <= 0 {
		return fmt.Errorf("-limit must be positive, got %d", cmd.Limit)
	}
	return nil
}

func (cmd *ListCommand) Run() error {
	out := cmd.out()

	core, err := cmd.openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	window, err := core.Pager.Window(context.Background(), cmd.Label, cmd.Offset, cmd.Limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("#", "ID", "Name", "Films", "Favourite")
	for i, item := range window.Items {
		fav := ""
		if item.IsFavorite {
			fav = "*"
		}
		if err := table.Append([]string{
			strconv.Itoa(cmd.Offset + i),
			item.ID,
			item.Name,
			strconv.Itoa(item.FilmCount),
			fav,
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d cached", len(window.Items), window.Total)
	if window.EndReached {
		fmt.Fprint(out, ", end of list")
	}
	fmt.Fprintln(out)

	if window.LoadError != nil {
		fmt.Fprintf(out, "warning: %s\n", window.LoadError.Error())
	}
	return nil
}
