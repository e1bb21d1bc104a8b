package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ifabos/typescope/symtab"
)

func (a *app) indexCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write the loaded symbol table as a YAML manifest",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if outFile == "" {
				return symtab.WriteManifest(a.out, a.repo.Manifest())
			}

			f, err := os.Create(outFile)
			if err != nil {
				return errors.Wrap(err, "failed to create manifest")
			}
			if err := symtab.WriteManifest(f, a.repo.Manifest()); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	return cmd
}
