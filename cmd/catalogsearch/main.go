// Command catalogsearch serves fuzzy catalog search over HTTP and offers
// offline tooling for catalog snapshot files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalogsearch/internal/config"
	"github.com/kailas-cloud/catalogsearch/internal/version"
)

// rootOptions are flags shared by every subcommand.
type rootOptions struct {
	configPath string
	jsonOutput bool
}

// loadConfig reads --config when set, otherwise config/<ENV>.yaml.
func (o *rootOptions) loadConfig() (config.Config, string, error) {
	env := config.GetEnv()
	if o.configPath != "" {
		cfg, err := config.LoadFile(o.configPath)
		return cfg, env, err
	}
	cfg, err := config.Load(env)
	return cfg, env, err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "catalogsearch",
		Short: "Fuzzy search over a movie storefront catalog",
		Long: `catalogsearch keeps an in-memory index of the storefront catalog
and ranks free-text queries against item titles and genres, tolerating
typos and partial words.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Path to a config file (default: config/$ENV.yaml)")
	root.PersistentFlags().BoolVarP(&o.jsonOutput, "json", "j", false, "Output as JSON")

	root.AddCommand(
		newServeCmd(o),
		newSearchCmd(o),
		newLoadCmd(o),
		newVersionCmd(o),
	)
	return root
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.jsonOutput {
				return printJSON(cmd.OutOrStdout(), version.Fields())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
