package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/cupos-admin/internal/export"
	"github.com/jwalitptl/cupos-admin/internal/filter"
)

func exportCmd(configPath *string) *cobra.Command {
	var (
		raw    filter.Raw
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the slot report for a date range to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Normalize(raw)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if output == "" {
				output = export.Filename(f.Desde, f.Hasta)
			}
			tmp, err := os.CreateTemp(filepath.Dir(output), ".reporte-*.xlsx")
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer os.Remove(tmp.Name())

			res, err := a.reportService().Export(cmd.Context(), f, tmp)
			if cerr := tmp.Close(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if err := os.Rename(tmp.Name(), output); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			log.Info().Str("file", output).Int("rows", res.Rows).Bool("partial", res.Partial).Msg("export written")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&raw.Desde, "desde", "", "start date (YYYY-MM-DD)")
	flags.StringVar(&raw.Hasta, "hasta", "", "end date (YYYY-MM-DD)")
	flags.StringVar(&raw.HoraDesde, "hora-desde", "", "earliest slot time (HH:MM)")
	flags.StringVar(&raw.HoraHasta, "hora-hasta", "", "latest slot time (HH:MM)")
	flags.StringVar(&raw.EPS, "eps", "", "insurer code")
	flags.StringSliceVar((*[]string)(&raw.Especialidades), "especialidades", nil, "specialty codes")
	flags.StringSliceVar((*[]string)(&raw.Medicos), "medicos", nil, "practitioner codes")
	flags.StringSliceVar((*[]string)(&raw.Estados), "estados", nil, "status categories (default all)")
	flags.StringVarP(&output, "output", "o", "", "output file (default reporte_<desde>_a_<hasta>.xlsx)")
	_ = cmd.MarkFlagRequired("desde")
	_ = cmd.MarkFlagRequired("hasta")

	return cmd
}
