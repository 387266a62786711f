// Package cli implements the one-shot maintenance commands of the binary.
//
// Every command follows the same shape: NewXCommand, ParseFlags(args), Run().
// Commands share the sync stack of the server (entrypoint.NewCore) and read
// defaults from the environment like the server does.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/entrypoint"
)

// base carries the flags and output shared by every command.
type base struct {
	DatabasePath string
	Out          io.Writer
}

func (b *base) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *base) openCore() (*entrypoint.Core, error) {
	cfg := config.NewConfig()
	if b.DatabasePath != "" {
		cfg.Database.Path = b.DatabasePath
	}
	return newCore(cfg)
}

// newCore is swapped in tests.
var newCore = entrypoint.NewCore

func parseLabelFlag(raw string) (entities.Label, error) {
	if raw == "" {
		return "", fmt.Errorf("required flag -label not provided")
	}
	return entities.ParseLabel(raw)
}
