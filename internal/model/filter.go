package model

import "time"

const (
	// MaxLimit bounds page size and export size.
	MaxLimit = 1_000_000
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 5000

	DateLayout = "2006-01-02"
)

// Filters is the canonical filter object produced by the normalizer. Facets
// only exist in plural form.
type Filters struct {
	Desde          time.Time
	Hasta          time.Time
	HoraDesde      string
	HoraHasta      string
	EPS            string
	Estados        []StatusCategory
	Especialidades []string
	Medicos        []string
	All            bool
	Limit          int
	Offset         int
}

// Window is the exclusive end of the requested page.
func (f Filters) Window() int {
	return f.Offset + f.Limit
}

// Unbounded returns a copy with the page forced to the maximum export window.
func (f Filters) Unbounded() Filters {
	f.Limit = MaxLimit
	f.Offset = 0
	return f
}

// ReportRow is one hydrated slot as returned to clients and written to exports.
type ReportRow struct {
	CitaID    int64          `json:"cita_id"`
	Fecha     string         `json:"fecha"`
	Hora      *string        `json:"hora"`
	IDUsuario *string        `json:"idusuario"`
	Paciente  *string        `json:"paciente"`
	EPS       *string        `json:"eps"`
	IDMedico  *string        `json:"idmedico"`
	Medico    *string        `json:"medico"`
	Estado    *string        `json:"estado"`
	Categoria StatusCategory `json:"categoria,omitempty"`
	TipoCita  *string        `json:"tipo_cita"`
}
