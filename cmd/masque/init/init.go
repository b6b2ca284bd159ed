// Package initcmder provides the init command for initializing a local .masque
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/masque/pkg/config"
)

const (
	dirName = ".masque"
)

const initLongDesc string = `Initialize a new .masque/ directory in the current working directory.

Creates a local .masque/ directory that takes precedence over the default
~/.masque/ directory for configuration and the SQLite snapshot database.

With --preset, also writes a config.toml for a known upstream:
  local        A development stream on localhost:8088
  masquerade   The hosted masquerade.io stream with dev credentials

Examples:
  masque init
  masque init --preset masquerade`

const initShortDesc string = "Initialize a local .masque/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		fmt.Sprintf("Write a preset config.toml (%s)", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func runInit(w io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .masque directory: %w", err)
		}
		fmt.Fprintf(w, "Initialized .masque directory: %s\n", dir)
	}

	if preset == "" {
		return nil
	}

	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s preset to %s\n", preset, cfger.GetTarget())
	return nil
}
