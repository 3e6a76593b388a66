package main

import (
	"encoding/json"
	"fmt"

	"glassngold/internal/encoder"
	"glassngold/internal/pipeline"
	"glassngold/internal/render"

	"github.com/spf13/cobra"
)

var appraiseJSON bool

// appraiseCmd appraises one file and prints the card.
var appraiseCmd = &cobra.Command{
	Use:   "appraise [file]",
	Short: "Appraise a single photo",
	Long: `Sends one image to the appraiser and prints the resulting listing.

Example:
  glassngold appraise ./ruins.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runAppraise,
}

func init() {
	appraiseCmd.Flags().BoolVar(&appraiseJSON, "json", false, "Print the listing as JSON")
}

func runAppraise(cmd *cobra.Command, args []string) error {
	upload := encoder.FromFile(args[0])
	// Rejected before the credential is checked; a text file never needs one.
	if err := encoder.Validate(upload); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), pipeline.MsgInvalidFile)
		return err
	}

	ctx := commandContext(cmd)
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	item, err := p.Submit(ctx, upload)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), p.State().Error)
		return err
	}

	if appraiseJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	}

	r, err := render.New(render.ThemeByName(cfg.UI.Theme), cfg.UI.Width)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.Card(item))
	return nil
}
