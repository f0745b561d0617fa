// Package export writes report rows as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/cupos-admin/internal/model"
)

const (
	SheetName   = "Reporte"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type column struct {
	Header string
	Width  float64
	Value  func(r *model.ReportRow) interface{}
}

var columns = []column{
	{"ID Cita", 12, func(r *model.ReportRow) interface{} { return r.CitaID }},
	{"Fecha", 12, func(r *model.ReportRow) interface{} { return r.Fecha }},
	{"Hora", 10, func(r *model.ReportRow) interface{} { return str(r.Hora) }},
	{"Paciente", 35, func(r *model.ReportRow) interface{} { return str(r.Paciente) }},
	{"EPS", 12, func(r *model.ReportRow) interface{} { return str(r.EPS) }},
	{"ID Médico", 14, func(r *model.ReportRow) interface{} { return str(r.IDMedico) }},
	{"Médico", 35, func(r *model.ReportRow) interface{} { return str(r.Medico) }},
	{"Estado", 14, func(r *model.ReportRow) interface{} { return str(r.Estado) }},
	{"Tipo Cita (CUPS)", 18, func(r *model.ReportRow) interface{} { return str(r.TipoCita) }},
}

// Headers lists the column titles in sheet order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Header
	}
	return out
}

func str(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// Filename is the download name for a report over [desde, hasta].
func Filename(desde, hasta time.Time) string {
	return fmt.Sprintf("reporte_%s_a_%s.xlsx", desde.Format(model.DateLayout), hasta.Format(model.DateLayout))
}

// WriteWorkbook writes one sheet with a bold header row followed by one row
// per report row. No rows gives a header-only workbook.
func WriteWorkbook(w io.Writer, rows []model.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	for i, c := range columns {
		if err := sw.SetColWidth(i+1, i+1, c.Width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	values := make([]interface{}, len(columns))
	for i := range rows {
		for j, c := range columns {
			values[j] = c.Value(&rows[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
