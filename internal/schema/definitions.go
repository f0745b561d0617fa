package schema

// Version of the logical→physical column table. Bump it whenever a
// candidate list changes so deployments can tell which mapping they run.
const Version = 3

// Logical table keys.
const (
	TableCupos         = "cupos"
	TablePatients      = "patients"
	TablePractitioners = "practitioners"
	TableSpecialties   = "specialties"
	TableSpecialtyLink = "specialty_practitioners"
	TableInsurers      = "insurers"
)

// Logical field keys.
const (
	FieldID            = "id"
	FieldDate          = "date"
	FieldTime          = "time"
	FieldStatus        = "status"
	FieldProcedureCode = "procedure_code"
	FieldPatientRef    = "patient_ref"
	FieldPractitioner  = "practitioner_ref"
	FieldInsurer       = "insurer"

	FieldDocument       = "document"
	FieldFirstName      = "first_name"
	FieldSecondName     = "second_name"
	FieldFirstSurname   = "first_surname"
	FieldSecondSurname  = "second_surname"
	FieldCode           = "code"
	FieldName           = "name"
	FieldProfile        = "profile"
	FieldCenter         = "center"
	FieldCUPS           = "cups"
	FieldSpecialtyCode  = "specialty_code"
	FieldPractitionerID = "practitioner_code"
)

// Field is one logical column and the physical names it has had, in priority order.
type Field struct {
	Name       string
	Candidates []string
	Required   bool
}

// TableDef describes a logical table. Physical is the default table name;
// it can be overridden from configuration. Required fields of an Optional
// table are only enforced when the table exists.
type TableDef struct {
	Logical  string
	Physical string
	Optional bool
	Fields   []Field
}

var employeeCode = []string{"Código_empleado", "Codigo_empleado", "codigo_empleado", "CodigoEmpleado", "C_digo_empleado"}

// Definitions is the static mapping for every table the service reads.
var Definitions = []TableDef{
	{
		Logical:  TableCupos,
		Physical: "agenda",
		Fields: []Field{
			{Name: FieldID, Candidates: []string{"id", "idcita", "id_cita", "idagenda", "id_agenda"}, Required: true},
			{Name: FieldDate, Candidates: []string{"fecha_cita", "fecha", "fechacita", "fec_cita", "fecha_programada"}, Required: true},
			{Name: FieldTime, Candidates: []string{"hora", "hora_cita", "horacita", "hora_inicio", "idhora"}},
			{Name: FieldStatus, Candidates: []string{"Estado", "estado"}, Required: true},
			{Name: FieldProcedureCode, Candidates: []string{"TipoCita", "tipo_cita", "cups"}},
			{Name: FieldPatientRef, Candidates: []string{"idusuario", "IdUsuario", "id_usuario"}, Required: true},
			{Name: FieldPractitioner, Candidates: []string{"idmedico", "IdMedico", "id_medico", "cod_medico"}, Required: true},
			{Name: FieldInsurer, Candidates: []string{"Codigo_eps", "codigo_eps", "eps"}},
		},
	},
	{
		Logical:  TablePatients,
		Physical: "usuarios",
		Fields: []Field{
			{Name: FieldID, Candidates: []string{"IdUsuario", "idusuario", "id_usuario"}, Required: true},
			{Name: FieldDocument, Candidates: []string{"Documento", "documento", "NumeroDocumento", "numero_documento", "Identificacion", "identificacion"}},
			{Name: FieldInsurer, Candidates: []string{"Codigo_eps", "codigo_eps"}},
			{Name: FieldFirstName, Candidates: []string{"Primer_nombre", "primer_nombre"}},
			{Name: FieldSecondName, Candidates: []string{"Segundo_nombre", "segundo_nombre"}},
			{Name: FieldFirstSurname, Candidates: []string{"Primer_apellido", "primer_apellido"}},
			{Name: FieldSecondSurname, Candidates: []string{"Segundo_apellido", "segundo_apellido"}},
		},
	},
	{
		Logical:  TablePractitioners,
		Physical: "empleados",
		Fields: []Field{
			{Name: FieldCode, Candidates: employeeCode, Required: true},
			{Name: FieldName, Candidates: []string{"Nombre_empleado", "nombre_empleado", "NombreEmpleado"}, Required: true},
			{Name: FieldProfile, Candidates: []string{"Perfil", "perfil"}},
			{Name: FieldCenter, Candidates: []string{"IdCentro", "idcentro", "id_centro"}},
		},
	},
	{
		Logical:  TableSpecialties,
		Physical: "tvespecialidades",
		Fields: []Field{
			{Name: FieldCode, Candidates: []string{"CodigoEspecialidad", "codigo_especialidad", "C_digo_especialidad"}, Required: true},
			{Name: FieldName, Candidates: []string{"Especialidad", "especialidad", "nombre"}, Required: true},
			{Name: FieldCUPS, Candidates: []string{"CUPS", "cups", "codigo_cups"}},
		},
	},
	{
		Logical:  TableSpecialtyLink,
		Physical: "especialidad_empleados",
		Optional: true,
		Fields: []Field{
			{Name: FieldPractitionerID, Candidates: employeeCode, Required: true},
			{Name: FieldSpecialtyCode, Candidates: []string{"Código_especialidad", "C_digo_especialidad", "Codigo_especialidad", "codigo_especialidad", "especialidad", "Especialidad"}, Required: true},
		},
	},
	{
		Logical:  TableInsurers,
		Physical: "tventidades",
		Optional: true,
		Fields: []Field{
			{Name: FieldCode, Candidates: []string{"Codigo", "codigo", "codigo_eps"}, Required: true},
			{Name: FieldName, Candidates: []string{"NombreEntidad", "nombre_entidad", "Nombre", "nombre"}},
		},
	},
}
