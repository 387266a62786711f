package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entities"
)

// FavouriteCommand sets or clears the favourite flag of a cached item.
type FavouriteCommand struct {
	base
	Label entities.Label
	ID    string
	Unset bool
}

func NewFavouriteCommand() *FavouriteCommand {
	return &FavouriteCommand{}
}

func (cmd *FavouriteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("favourite", flag.ExitOnError)

	var label string
	fs.StringVar(&label, "label", "", "List the item belongs to: persons, starships or planets (required)")
	fs.StringVar(&cmd.ID, "id", "", "Remote id of the cached item (required)")
	fs.BoolVar(&cmd.Unset, "unset", false, "Clear the flag instead of setting it")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the cache database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s favourite -label <list> -id <id> [-unset]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mark a cached item as favourite. The flag survives appends\n")
		fmt.Fprintf(os.Stderr, "and refreshes for as long as the item stays in the list.\n\n")
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
	if cmd.ID == "" {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

func (cmd *FavouriteCommand) Run() error {
	ctx := context.Background()

	core, err := cmd.openCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if err := core.DB.SetFavourite(ctx, cmd.Label, cmd.ID, !cmd.Unset); err != nil {
		return fmt.Errorf("update %s/%s: %w", cmd.Label, cmd.ID, err)
	}

	item, err := core.DB.GetItem(ctx, cmd.Label, cmd.ID)
	if err != nil {
		return err
	}
	state := "favourite"
	if !item.IsFavorite {
		state = "not favourite"
	}
	fmt.Fprintf(cmd.out(), "%s (%s, %s) is now %s\n", item.Name, item.ID, item.Label, state)
	return nil
}
