// Package cmd holds the classical-quiz command tree.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"classical-quiz/internal/config"
	"classical-quiz/internal/logging"
)

// annotationLogToFile marks commands that own the terminal; their logs go to
// the configured log file instead of stderr.
const annotationLogToFile = "log-to-file"

var (
	cfgFile string
	cfg     config.Config
)

// flagKeys maps persistent and local flags onto config keys.
var flagKeys = map[string]string{
	"db":           "db_path",
	"catalog":      "catalog_path",
	"media-dir":    "media_dir",
	"no-audio":     "audio.enabled",
	"control-addr": "control.addr",
	"log-level":    "log.level",
	"answer-delay": "answer_delay",
}

var rootCmd = &cobra.Command{
	Use:   "classical-quiz",
	Short: "Name the composer of short classical music clips",
	Long: `classical-quiz plays short clips of classical music and asks you to pick
the composer from a set of buttons. Scores and past games are kept in a local
SQLite database, and a small HTTP API lets other terminals control playback.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.DefaultConfigPath()+")")
	flags.String("db", "", "score database path")
	flags.String("catalog", "", "sample catalog YAML (default: built-in catalog)")
	flags.String("media-dir", "", "directory relative sample uris resolve against")
	flags.String("log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the command tree with ctx available to every command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	toFile := cmd.Annotations[annotationLogToFile] == "true"
	if err := logging.Setup(cfg.Log, toFile); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	return nil
}

// bindFlags binds every known flag present on the running command. Unset
// flags leave the config defaults in place.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if name == "no-audio" {
			// Inverted: --no-audio disables the sound card backend.
			v.Set(key, flag.Value.String() != "true")
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}
