package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/cupos-admin/internal/schema"
)

func schemaCmd(configPath *string) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the resolved logical to physical column mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				printMapping(cmd.OutOrStdout(), schema.MustDefault())
				return nil
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			printMapping(cmd.OutOrStdout(), a.mapping)
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the preferred candidate columns without connecting to the database")
	return cmd
}

func printMapping(out io.Writer, m *schema.Mapping) {
	fmt.Fprintf(out, "mapping version %d\n", m.Version)
	for _, line := range m.Describe() {
		fmt.Fprintln(out, line)
	}
}
