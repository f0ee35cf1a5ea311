package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/molview/config"
	"github.com/pthm-cable/molview/molecule"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and convert molecule catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the molecules the viewer would show",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog(config.Cfg())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tNAME\tATOMS\tBONDS\tDESCRIPTION")
		for i, m := range c.All() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, m.Name,
				humanize.Comma(int64(len(m.Atoms))), humanize.Comma(int64(len(m.Bonds))), m.Description)
		}
		return tw.Flush()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check catalog files (YAML, SDF or MOL) for authoring errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			c, err := molecule.LoadFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d molecules\n", path, c.Len())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d catalogs invalid", failed, len(args))
		}
		return nil
	},
}

var importOpts struct {
	name string
	out  string
}

var catalogImportCmd = &cobra.Command{
	Use:   "import FILE.sdf",
	Short: "Convert an SDF/MOL structure to a YAML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		name := importOpts.name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		m, err := molecule.ParseSDF(f, name)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		c, err := molecule.NewCatalog([]*molecule.Molecule{m})
		if err != nil {
			return err
		}

		if importOpts.out == "" {
			return c.WriteYAML(cmd.OutOrStdout())
		}
		out, err := os.Create(importOpts.out)
		if err != nil {
			return err
		}
		if err := c.WriteYAML(out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&importOpts.name, "name", "", "Molecule name (default: file name)")
	catalogImportCmd.Flags().StringVarP(&importOpts.out, "out", "o", "", "Output YAML path (default: stdout)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}
