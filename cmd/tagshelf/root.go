package main

import (
	"fmt"
	"os"

	"tagshelf/internal/config"
	"tagshelf/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	jsonLog bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tagshelf",
		Short:   "Tag and search your image folders",
		Long:    `Tagshelf catalogs image folders and keeps artists, source links, tags and notes inside each file's own metadata, using exiftool.`,
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tagshelf/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "log JSON lines instead of text")

	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewTagsCmd())
	rootCmd.AddCommand(NewFieldCmd("tag", "tags"))
	rootCmd.AddCommand(NewFieldCmd("artist", "artists"))
	rootCmd.AddCommand(NewFieldCmd("link", "links"))
	rootCmd.AddCommand(NewNotesCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil && cfgFile != "" {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warningText(fmt.Sprintf("Warning: %v", err)))
		fmt.Fprintln(cmd.ErrOrStderr(), infoText("Using default settings."))
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []log.Option{log.WithOutput(os.Stderr)}
	if jsonLog || cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(debug || cfg.Log.Debug)
	return nil
}
