package model

import "strings"

// Patient is a row of the users table as far as this system reads it.
type Patient struct {
	ID              int64   `db:"id" json:"id"`
	Documento       *string `db:"documento" json:"documento,omitempty"`
	InsurerCode     *string `db:"codigo_eps" json:"codigo_eps,omitempty"`
	PrimerNombre    *string `db:"primer_nombre" json:"primer_nombre,omitempty"`
	SegundoNombre   *string `db:"segundo_nombre" json:"segundo_nombre,omitempty"`
	PrimerApellido  *string `db:"primer_apellido" json:"primer_apellido,omitempty"`
	SegundoApellido *string `db:"segundo_apellido" json:"segundo_apellido,omitempty"`
}

// DisplayName joins the non-empty name parts with single spaces.
func (p *Patient) DisplayName() string {
	if p == nil {
		return ""
	}
	return BuildName(p.PrimerNombre, p.SegundoNombre, p.PrimerApellido, p.SegundoApellido)
}

// BuildName joins name parts, skipping nil and blank ones.
func BuildName(parts ...*string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		if s := strings.TrimSpace(*p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}
