package model

// Practitioner is an employee that can own slots.
type Practitioner struct {
	Code string  `db:"codigo" json:"codigo"`
	Name *string `db:"nombre" json:"nombre"`
}

// DoctorFilter restricts the practitioner catalog.
type DoctorFilter struct {
	Profile int
	Center  int64
	// Codes narrows to these practitioner codes when non-nil.
	Codes []string
}

// Specialty as stored in the specialty reference table.
type Specialty struct {
	Code string  `db:"codigo" json:"codigo"`
	Name *string `db:"nombre" json:"nombre"`
	CUPS *string `db:"cups" json:"cups,omitempty"`
}

// Insurer (EPS) as stored in the entities table.
type Insurer struct {
	Code string  `db:"codigo" json:"codigo"`
	Name *string `db:"nombre" json:"nombre"`
}

// Option is one entry of a select-style catalog.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
