package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"tagshelf/pkg/types"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "search [paths...]",
		Short: "List images matching a tag query",
		Long: `Open folders and list the images carrying every query term.
A term prefixed with "-" excludes images carrying it, e.g. --query "cat -draft".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.SetQuery(query)
			renderResults(cmd.OutOrStdout(), a.session)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "tag query")
	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the catalogued fields of one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			addrs, err := a.resolve(args)
			if err != nil {
				return err
			}
			img, err := a.session.Catalog().Image(addrs[0])
			if err != nil {
				return err
			}
			renderImage(cmd.OutOrStdout(), img)
			return nil
		},
	}
}

// NewTagsCmd creates the tags command
func NewTagsCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "tags [paths...]",
		Short: "Count artists, links and tags over the matching images",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.SetQuery(query)
			if !a.selectAll() {
				fmt.Fprintln(cmd.OutOrStdout(), infoText("No matching images."))
				return nil
			}
			renderTags(cmd.OutOrStdout(), a.session)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "tag query")
	return cmd
}

// NewFieldCmd creates the add/rm command pair for one list field
func NewFieldCmd(name, pluralName string) *cobra.Command {
	field, err := types.ParseField(name)
	if err != nil {
		panic(err)
	}

	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Edit the %s of images", pluralName),
	}
	cmd.AddCommand(fieldEditCmd(field, "add", fmt.Sprintf("Add a %s to images", name), true))
	cmd.AddCommand(fieldEditCmd(field, "rm", fmt.Sprintf("Remove a %s from images", name), false))
	return cmd
}

func fieldEditCmd(field types.Field, use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <value> <files...>",
		Short:   short,
		Args:    cobra.MinimumNArgs(2),
		Aliases: editAliases(add),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, files := args[0], args[1:]
			a, err := openApp(files)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.selectFiles(files); err != nil {
				return err
			}
			var changed int
			if add {
				changed, err = a.session.AddValue(field, value)
			} else {
				changed, err = a.session.RemoveValue(field, value)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("Updated %d %s", changed, plural(changed, "image", "images"))))
			return a.writeFailures()
		},
	}
}

func editAliases(add bool) []string {
	if add {
		return []string{"a"}
	}
	return []string{"remove", "del"}
}

// NewNotesCmd creates the notes command
func NewNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <file> <text...>",
		Short: "Replace the notes of one image",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			a, err := openApp([]string{file})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.selectFiles([]string{file}); err != nil {
				return err
			}
			if err := a.session.SetNotes(strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Notes saved for "+filepath.Base(file)))
			return a.writeFailures()
		},
	}
}
