package main

import (
	"encoding/json"
	"fmt"
	"time"

	"glassngold/internal/portfolio"
	"glassngold/internal/render"

	"github.com/spf13/cobra"
)

var portfolioJSON bool

// portfolioCmd prints the seeded portfolio without touching the network.
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show the starting portfolio",
	RunE:  runPortfolio,
}

func init() {
	portfolioCmd.Flags().BoolVar(&portfolioJSON, "json", false, "Print items as JSON")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateLocal(); err != nil {
		return err
	}
	items := portfolio.NewSeeded(time.Now()).Items()

	if portfolioJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	r, err := render.New(render.ThemeByName(cfg.UI.Theme), cfg.UI.Width)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.Header())
	fmt.Fprintln(cmd.OutOrStdout(), r.Portfolio(items))
	return nil
}
