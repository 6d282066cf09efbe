package main

import (
	"encoding/json"
	"fmt"

	"github.com/danmuck/dhcpopt/internal/config"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/danmuck/dhcpopt/internal/protocol/options"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List known option and relay sub-option codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			out := cmd.OutOrStdout()
			switch format {
			case config.OutputJSON:
				raw, err := json.Marshal(map[string][]options.CatalogEntry{
					"options":    options.Catalog(),
					"suboptions": options.RelayCatalog(),
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%s\n", raw)
				return err
			case config.OutputText:
				if err := pipeline.RenderCatalog(out, "options", options.Catalog()); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return pipeline.RenderCatalog(out, "relay agent sub-options", options.RelayCatalog())
			}
			return fmt.Errorf("catalog: unknown format %q", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", config.OutputText, "output format: text|json")
	return cmd
}
