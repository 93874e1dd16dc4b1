package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediajobs/internal/engine"
)

type presetListing struct {
	Engine        string          `json:"engine"`
	Kind          string          `json:"kind"`
	DefaultPreset string          `json:"defaultPreset"`
	Available     bool            `json:"available"`
	Presets       []engine.Preset `json:"presets"`
}

func newPresetsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "presets [engine]",
		Short:       "List the presets each engine accepts",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			names := engine.Names()
			if len(args) == 1 {
				name, err := engine.Parse(args[0])
				if err != nil {
					return err
				}
				names = []engine.Name{name}
			}

			listings := make([]presetListing, 0, len(names))
			for _, name := range names {
				presets, def := engine.Presets(name)
				listings = append(listings, presetListing{
					Engine:        string(name),
					Kind:          string(engine.KindOf(name)),
					DefaultPreset: def,
					Available:     engine.Supported(name),
					Presets:       presets,
				})
			}
			if asJSON {
				return writeJSON(cmd, listings)
			}

			out := cmd.OutOrStdout()
			for i, listing := range listings {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, renderPresetTable(listing))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print presets as JSON")
	return cmd
}

func renderPresetTable(listing presetListing) string {
	var rows [][]string
	if listing.Available {
		rows = make([][]string, 0, len(listing.Presets))
		for _, preset := range listing.Presets {
			name := preset.Name
			if name == listing.DefaultPreset {
				name += " (default)"
			}
			rows = append(rows, []string{name, preset.Description, preset.Extension, strings.Join(preset.Args, " ")})
		}
	}
	spec := tableSpec{
		title:       fmt.Sprintf("%s (%s)", listing.Engine, listing.Kind),
		headers:     []string{"Preset", "Description", "Ext", "Arguments"},
		rows:        rows,
		placeholder: fmt.Sprintf("%s (%s): not available in this build", listing.Engine, listing.Kind),
	}
	return spec.render()
}
