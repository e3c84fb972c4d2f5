package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-article-discovery/internal/codec"
	"github.com/gcbaptista/go-article-discovery/internal/engine"
	"github.com/gcbaptista/go-article-discovery/model"
)

var flagJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [querystring]",
	Short: "Evaluate a list query such as 'search=go&tag=debugging&sort=title'",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 1 {
			raw = args[0]
		}
		return withLoadedEngine(cmd, func(eng *engine.Engine) error {
			values := codec.Decode(raw)
			view := eng.Evaluate(queryValues(values))
			if flagJSON {
				return printJSON(view)
			}
			printView(view)
			return nil
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag with its article count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedEngine(cmd, func(eng *engine.Engine) error {
			tags := eng.Catalog().Tags()
			if flagJSON {
				return printJSON(tags)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tARTICLES")
			for _, tc := range tags {
				fmt.Fprintf(w, "%s\t%d\n", tc.Tag, tc.Count)
			}
			return w.Flush()
		})
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <file>",
	Short: "Write the loaded catalog to a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedEngine(cmd, func(eng *engine.Engine) error {
			if err := eng.WriteSnapshot(args[0]); err != nil {
				return err
			}
			fmt.Printf("Wrote %d articles to %s\n", eng.Catalog().Len(), args[0])
			return nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, tagsCmd} {
		cmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of a table")
	}
}

// withLoadedEngine creates and loads an engine, runs fn and closes the engine.
func withLoadedEngine(cmd *cobra.Command, fn func(eng *engine.Engine) error) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	if err := eng.Load(cmd.Context()); err != nil {
		_ = eng.Close()
		return fmt.Errorf("loading content: %w", err)
	}
	fnErr := fn(eng)
	if err := eng.Close(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// queryValues re-encodes a decoded state so Evaluate sees canonical values.
func queryValues(state model.FilterState) url.Values {
	values := url.Values{}
	if state.SearchQuery != "" {
		values[codec.ParamSearch] = []string{state.SearchQuery}
	}
	if len(state.SelectedTags) > 0 {
		values[codec.ParamTag] = state.SelectedTags
	}
	values[codec.ParamSort] = []string{string(state.SortBy)}
	values[codec.ParamOrder] = []string{string(state.SortOrder)}
	return values
}

func printView(view model.View) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tID\tTITLE\tTAGS")
	for _, a := range view.Articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.PublishedAt.Format("2006-01-02"), a.ID, a.Title, strings.Join(a.Tags, ", "))
	}
	_ = w.Flush()

	if view.VisibleCount == 0 && view.HasActiveFilters {
		fmt.Println("No articles match the current filters.")
	}
	fmt.Printf("Showing %d of %d articles (%s)\n", view.VisibleCount, view.TotalCount, view.URL)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
