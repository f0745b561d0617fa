package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
	"github.com/jwalitptl/cupos-admin/pkg/textnorm"
)

type cupoRepository struct {
	baseRepository
}

func NewCupoRepository(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) repository.CupoRepository {
	return &cupoRepository{newBaseRepository(db, m.Table(schema.TableCupos), mt)}
}

func (r *cupoRepository) FiltersInsurer() bool {
	return r.table.Has(schema.FieldInsurer)
}

func (r *cupoRepository) HasProcedureCode() bool {
	return r.table.Has(schema.FieldProcedureCode)
}

// hourExpr renders the slot time as "HH:MM" text.
func (r *cupoRepository) hourExpr() string {
	if c := r.col("a", schema.FieldTime); c != "" {
		return fmt.Sprintf("LEFT(CAST(%s AS TEXT), 5)", c)
	}
	return ""
}

func (r *cupoRepository) Find(ctx context.Context, q model.CupoQuery) ([]*model.Cupo, error) {
	idCol, err := r.mustCol("a", schema.FieldID)
	if err != nil {
		return nil, err
	}
	dateCol, err := r.mustCol("a", schema.FieldDate)
	if err != nil {
		return nil, err
	}
	statusCol, err := r.mustCol("a", schema.FieldStatus)
	if err != nil {
		return nil, err
	}
	patientCol, err := r.mustCol("a", schema.FieldPatientRef)
	if err != nil {
		return nil, err
	}
	practCol, err := r.mustCol("a", schema.FieldPractitioner)
	if err != nil {
		return nil, err
	}
	hour := r.hourExpr()

	hourSelect := "CAST(NULL AS TEXT) AS hora"
	if hour != "" {
		hourSelect = hour + " AS hora"
	}

	var (
		where = []string{dateCol + " BETWEEN ? AND ?"}
		args  = []interface{}{q.Desde.Format(model.DateLayout), q.Hasta.Format(model.DateLayout)}
	)

	if hour != "" && q.HoraDesde != "" {
		where = append(where, hour+" >= ?")
		args = append(args, q.HoraDesde)
	}
	if hour != "" && q.HoraHasta != "" {
		where = append(where, hour+" <= ?")
		args = append(args, q.HoraHasta)
	}

	if len(q.Estados) > 0 {
		ors := make([]string, 0, len(q.Estados))
		for _, c := range q.Estados {
			ors = append(ors, foldStatus(statusCol)+" LIKE ?")
			args = append(args, c.FoldedPrefix()+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	if len(q.ProcedureCodes) > 0 {
		procCol, err := r.mustCol("a", schema.FieldProcedureCode)
		if err != nil {
			return nil, err
		}
		where = append(where, "CAST("+procCol+" AS TEXT) IN (?)")
		args = append(args, q.ProcedureCodes)
	}

	if len(q.Practitioners) > 0 {
		where = append(where, "CAST("+practCol+" AS TEXT) IN (?)")
		args = append(args, q.Practitioners)
	}

	if q.InsurerCode != "" && r.FiltersInsurer() {
		where = append(where, "CAST("+r.col("a", schema.FieldInsurer)+" AS TEXT) = ?")
		args = append(args, q.InsurerCode)
	}

	dir := string(model.SortAsc)
	if q.Direction == model.SortDesc {
		dir = string(model.SortDesc)
	}
	order := []string{dateCol + " " + dir}
	if hour != "" {
		order = append(order, hour+" "+dir)
	}
	order = append(order, idCol+" "+dir)

	fields := []string{
		idCol + " AS cita_id",
		dateCol + " AS fecha",
		hourSelect,
		"CAST(" + patientCol + " AS TEXT) AS idusuario",
		"CAST(" + practCol + " AS TEXT) AS idmedico",
		statusCol + " AS estado",
		r.textOrNull("a", schema.FieldProcedureCode, "tipo_cita"),
		r.textOrNull("a", schema.FieldInsurer, "eps"),
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		strings.Join(fields, ", "),
		r.from("a"),
		strings.Join(where, " AND "),
		strings.Join(order, ", "),
	)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, q.Offset)
	}

	var cupos []*model.Cupo
	if err := r.selectIn(ctx, "cupos.find", &cupos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cupos: %w", err)
	}
	return cupos, nil
}

func (r *cupoRepository) Statuses(ctx context.Context, ids []int64) ([]model.CupoStatus, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idCol, err := r.mustCol("a", schema.FieldID)
	if err != nil {
		return nil, err
	}
	statusCol, err := r.mustCol("a", schema.FieldStatus)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s AS id, %s AS estado FROM %s WHERE %s IN (?)`,
		idCol, statusCol, r.from("a"), idCol)

	var statuses []model.CupoStatus
	if err := r.selectIn(ctx, "cupos.statuses", &statuses, query, ids); err != nil {
		return nil, fmt.Errorf("failed to read cupo statuses: %w", err)
	}
	return statuses, nil
}

func (r *cupoRepository) DeleteUnassigned(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	idCol, err := r.table.Require(schema.FieldID)
	if err != nil {
		return 0, err
	}
	statusCol, err := r.table.Require(schema.FieldStatus)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s IN (?) AND %s LIKE ?`,
		quote(r.table.Name), quote(idCol), foldStatus(quote(statusCol)))

	n, err := r.execIn(ctx, "cupos.delete", query, ids, model.StatusSinAsignar.FoldedPrefix()+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to delete cupos: %w", err)
	}
	return n, nil
}

// foldStatus is the SQL form of textnorm.FoldStatus.
func foldStatus(col string) string {
	return fmt.Sprintf("UPPER(TRANSLATE(LTRIM(%s), '%s', '%s'))", col, textnorm.Accented, textnorm.Plain)
}
