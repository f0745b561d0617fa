package filter

import "net/url"

// SpecialtiesRequest is the body of a practitioner catalog lookup.
type SpecialtiesRequest struct {
	Especialidades StringList `json:"especialidades"`
	Especialidad   StringList `json:"especialidad"`
}

// Codes merges both keys into one deduplicated list.
func (r SpecialtiesRequest) Codes() []string {
	return dedupe(r.Especialidades, r.Especialidad)
}

// SpecialtiesFromQuery reads specialty codes from any of the accepted query
// keys, repeated or comma-separated.
func SpecialtiesFromQuery(q url.Values) []string {
	return dedupe(queryList(q, "especialidades", "especialidades[]", "especialidad", "especialidad[]"))
}
