package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/fer-api/internal/model"
)

// ListModels prints the registry and whether each weight file is present.
func ListModels(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	dir, err := resultsDir()
	if err != nil {
		return err
	}
	printModels(cmd.OutOrStdout(), registry, dir)
	return nil
}

func printModels(w io.Writer, registry *model.Registry, dir string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "ARCHITECTURE", "DATASET", "ACCURACY", "EMOTIONS", "WEIGHTS"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	for _, name := range registry.Names() {
		d, err := registry.Lookup(name)
		if err != nil {
			continue
		}

		weights := "missing"
		if _, err := os.Stat(filepath.Join(dir, d.File)); err == nil {
			weights = d.File
		}

		table.Append([]string{
			name,
			d.Architecture,
			d.Dataset,
			fmt.Sprintf("%.2f%%", d.Accuracy),
			strings.Join(d.Emotions, ","),
			weights,
		})
	}

	table.Render()
}
