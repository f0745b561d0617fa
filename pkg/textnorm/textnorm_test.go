package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Codigo_empleado", StripDiacritics("Código_empleado"))
	assert.Equal(t, "Gomez", StripDiacritics("Gómez"))
	assert.Equal(t, "plain", StripDiacritics("plain"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "codigo_empleado", Key("  CÓDIGO_Empleado "))
}

func TestFoldStatus(t *testing.T) {
	assert.Equal(t, "SIN ASIGNAR", FoldStatus("sín asignar"))
	assert.Equal(t, "SIN ASIGNAR", FoldStatus("  Sin asignar"))
	assert.Equal(t, "ATENDIDA", FoldStatus("Atendida"))
	assert.Equal(t, "\tSIN", FoldStatus("\tsin"), "only spaces are trimmed, as LTRIM does")
	assert.Equal(t, "ACCION CANONICA", FoldStatus("Acción canónica"))
}

func TestAccentTablesPair(t *testing.T) {
	assert.Equal(t, len([]rune(Accented)), len([]rune(Plain)))
}
