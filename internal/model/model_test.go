package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		status string
		want   StatusCategory
		ok     bool
	}{
		{"Asignada", StatusAsignada, true},
		{"ASIGNADO por call center", StatusAsignada, true},
		{"Atendida", StatusAtendida, true},
		{"cumplida", StatusCumplida, true},
		{"Sin asignar", StatusSinAsignar, true},
		{"SÍN ASIGNAR - agenda abierta", StatusSinAsignar, true},
		{" Sin asignar", StatusSinAsignar, true},
		{"\tSin asignar", "", false},
		{"Cancelada", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got, ok := CategorizeStatus(tt.status)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatusCategory(t *testing.T) {
	c, ok := ParseStatusCategory(" sin_asignar ")
	assert.True(t, ok)
	assert.Equal(t, StatusSinAsignar, c)

	_, ok = ParseStatusCategory("CANCELADA")
	assert.False(t, ok)
}

func TestCupoCategory(t *testing.T) {
	c := &Cupo{Estado: strPtr("Atendida")}
	cat, ok := c.Category()
	assert.True(t, ok)
	assert.Equal(t, StatusAtendida, cat)

	_, ok = (&Cupo{}).Category()
	assert.False(t, ok)
}

func TestPatientDisplayName(t *testing.T) {
	p := &Patient{
		PrimerNombre:    strPtr("Ana"),
		SegundoNombre:   nil,
		PrimerApellido:  strPtr("Gómez"),
		SegundoApellido: strPtr(""),
	}
	assert.Equal(t, "Ana Gómez", p.DisplayName())

	p = &Patient{
		PrimerNombre:    strPtr(" Luis "),
		SegundoNombre:   strPtr("Carlos"),
		PrimerApellido:  strPtr("Pérez"),
		SegundoApellido: strPtr("Rojas"),
	}
	assert.Equal(t, "Luis Carlos Pérez Rojas", p.DisplayName())

	var missing *Patient
	assert.Equal(t, "", missing.DisplayName())
}

func TestFiltersWindow(t *testing.T) {
	f := Filters{Offset: 10, Limit: 25, Desde: time.Now()}
	assert.Equal(t, 35, f.Window())

	u := f.Unbounded()
	assert.Equal(t, MaxLimit, u.Limit)
	assert.Equal(t, 0, u.Offset)
	assert.Equal(t, 25, f.Limit, "original is untouched")
}
