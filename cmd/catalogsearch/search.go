package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/source/file"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

type searchOptions struct {
	file           string
	threshold      float64
	limit          int
	ignoreLocation bool
}

// searchResult is one line of `search --json` output.
type searchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Genre string `json:"genre,omitempty"`
}

func newSearchCmd(o *rootOptions) *cobra.Command {
	so := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Rank a query against a snapshot file",
		Long: `Loads a JSON or YAML snapshot file and prints the matching items, best
first, one per line as <id><TAB><title>. An empty query lists the whole file.`,
		Example: `  catalogsearch search --file movies.yaml river
  catalogsearch search --file movies.json --threshold 0.5 lvoe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, o, so, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&so.file, "file", "f", "", "Snapshot file (.json, .yaml)")
	cmd.Flags().Float64VarP(&so.threshold, "threshold", "t", fuzzy.DefaultThreshold, "Maximum accepted distance in (0, 1]")
	cmd.Flags().IntVarP(&so.limit, "limit", "n", 0, "Maximum results (0 = all)")
	cmd.Flags().BoolVar(&so.ignoreLocation, "ignore-location", false, "Do not penalize matches far from the start")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSearch(cmd *cobra.Command, o *rootOptions, so *searchOptions, query string) error {
	src, err := file.New(so.file, nil)
	if err != nil {
		return err
	}
	snap, err := src.Fetch(cmd.Context())
	if err != nil {
		return err
	}

	opts := fuzzy.DefaultOptions()
	opts.IgnoreLocation = so.ignoreLocation
	ranker, err := index.NewRanker(so.threshold, opts)
	if err != nil {
		return err
	}
	svc := searchuc.New(ranker, nil)
	svc.Publish(snap)

	limits := request.Limits{Default: snap.Len()}
	req, err := limits.New(query, so.limit, 0)
	if err != nil {
		return err
	}
	page, err := svc.Search(cmd.Context(), &req)
	if err != nil {
		return err
	}

	if o.jsonOutput {
		out := make([]searchResult, len(page.Items))
		for i := range page.Items {
			it := &page.Items[i]
			out[i] = searchResult{ID: it.ID(), Title: it.Title(), Genre: it.Genre()}
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	for i := range page.Items {
		it := &page.Items[i]
		if _, err := fmt.Fprintf(w, "%s\t%s\n", it.ID(), it.Title()); err != nil {
			return err
		}
	}
	return nil
}
