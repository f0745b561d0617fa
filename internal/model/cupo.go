package model

import (
	"strings"
	"time"

	"github.com/jwalitptl/cupos-admin/pkg/textnorm"
)

// StatusCategory is derived from the free-text status of a slot; it is never stored.
type StatusCategory string

const (
	StatusAsignada   StatusCategory = "ASIGNADA"
	StatusAtendida   StatusCategory = "ATENDIDA"
	StatusCumplida   StatusCategory = "CUMPLIDA"
	StatusSinAsignar StatusCategory = "SIN_ASIGNAR"
)

// AllStatusCategories in their canonical order.
var AllStatusCategories = []StatusCategory{
	StatusAsignada,
	StatusAtendida,
	StatusCumplida,
	StatusSinAsignar,
}

var statusPrefixes = map[StatusCategory]string{
	StatusAsignada:   "Asignad",
	StatusAtendida:   "Atendid",
	StatusCumplida:   "Cumplid",
	StatusSinAsignar: "Sin asignar",
}

// Prefix is the leading text stored for slots in this category.
func (c StatusCategory) Prefix() string {
	return statusPrefixes[c]
}

// FoldedPrefix is Prefix as compared against textnorm.FoldStatus output.
func (c StatusCategory) FoldedPrefix() string {
	return textnorm.FoldStatus(c.Prefix())
}

// Valid reports whether c is one of the four known categories.
func (c StatusCategory) Valid() bool {
	_, ok := statusPrefixes[c]
	return ok
}

// ParseStatusCategory accepts the category key in any case ("sin_asignar", "SIN_ASIGNAR").
func ParseStatusCategory(s string) (StatusCategory, bool) {
	c := StatusCategory(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

// CategorizeStatus maps free status text to its category by accent- and
// case-insensitive prefix. The repositories filter with the same fold.
func CategorizeStatus(status string) (StatusCategory, bool) {
	folded := textnorm.FoldStatus(status)
	for _, c := range AllStatusCategories {
		if strings.HasPrefix(folded, c.FoldedPrefix()) {
			return c, true
		}
	}
	return "", false
}

// Cupo is one appointment slot as read from the slot table.
type Cupo struct {
	ID              int64     `db:"cita_id" json:"cita_id"`
	Fecha           time.Time `db:"fecha" json:"fecha"`
	Hora            *string   `db:"hora" json:"hora"`
	PatientRef      *string   `db:"idusuario" json:"idusuario"`
	PractitionerRef *string   `db:"idmedico" json:"idmedico"`
	Estado          *string   `db:"estado" json:"estado"`
	ProcedureCode   *string   `db:"tipo_cita" json:"tipo_cita"`
	InsurerCode     *string   `db:"eps" json:"eps"`
}

// Category derives the status category of the slot.
func (c *Cupo) Category() (StatusCategory, bool) {
	if c.Estado == nil {
		return "", false
	}
	return CategorizeStatus(*c.Estado)
}

// CupoStatus is the id/status pair checked before a delete.
type CupoStatus struct {
	ID     int64   `db:"id"`
	Estado *string `db:"estado"`
}

// SortDirection of a slot query.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// CupoQuery is the repository-level query over the slot table. Every
// non-empty set restricts the result; empty sets do not filter.
type CupoQuery struct {
	Desde          time.Time
	Hasta          time.Time
	HoraDesde      string
	HoraHasta      string
	Estados        []StatusCategory
	ProcedureCodes []string
	Practitioners  []string
	// InsurerCode is only honoured by repositories whose slot table carries
	// an insurer column.
	InsurerCode string
	Direction   SortDirection
	Offset      int
	Limit       int
}
