package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tagshelf/internal/watch"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Keep folders open and reload them when images change",
		Long:  `Open folders and reload each one whenever an image in it is created, changed or removed. Results for --query are printed after every reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(args)
			if err != nil {
				return err
			}
			defer a.Close()
			a.session.SetQuery(query)

			daemon, err := watch.NewDaemon(cfg, a.session)
			if err != nil {
				return err
			}
			a.suppress = daemon.Suppress

			for _, folder := range a.session.Catalog().Folders() {
				if err := daemon.AddFolder(folder.Path); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), warningText(err.Error()))
				}
			}

			out := cmd.OutOrStdout()
			daemon.SetCallback(func(change watch.Change, reloaded bool) {
				if !reloaded {
					return
				}
				fmt.Fprintln(out, infoText(fmt.Sprintf("%s changed", change.Folder)))
				renderResults(out, a.session)
			})

			renderResults(out, a.session)
			fmt.Fprintln(out, infoText("Watching for changes. Press Ctrl+C to stop."))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return daemon.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "tag query")
	return cmd
}
