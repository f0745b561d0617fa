// Package filter turns raw request input (JSON bodies or query strings) into
// the canonical model.Filters. All shape coercion happens here.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/cupos-admin/internal/model"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/validator"
)

// Raw is the filter payload as clients send it. Singular facets are kept
// for older clients and folded into the plural ones.
type Raw struct {
	Desde          string     `json:"desde" validate:"required,min=10"`
	Hasta          string     `json:"hasta" validate:"required,min=10"`
	HoraDesde      string     `json:"horaDesde"`
	HoraHasta      string     `json:"horaHasta"`
	EPS            string     `json:"eps"`
	Estados        StringList `json:"estados"`
	Especialidad   StringList `json:"especialidad"`
	Medico         StringList `json:"medico"`
	Especialidades StringList `json:"especialidades"`
	Medicos        StringList `json:"medicos"`
	All            bool       `json:"all"`
	Limit          *FlexInt   `json:"limit" validate:"omitempty,gt=0,lte=1000000"`
	Offset         *FlexInt   `json:"offset" validate:"omitempty,gte=0"`
}

var validate = validator.New()

// FromQuery reads a Raw from query-string parameters. List facets accept
// repeated keys, "key[]" keys and comma-separated values.
func FromQuery(q url.Values) (Raw, error) {
	raw := Raw{
		Desde:          queryFirst(q, "desde"),
		Hasta:          queryFirst(q, "hasta"),
		HoraDesde:      queryFirst(q, "horaDesde"),
		HoraHasta:      queryFirst(q, "horaHasta"),
		EPS:            queryFirst(q, "eps"),
		Estados:        queryList(q, "estados", "estados[]"),
		Especialidad:   queryList(q, "especialidad"),
		Medico:         queryList(q, "medico"),
		Especialidades: queryList(q, "especialidades", "especialidades[]"),
		Medicos:        queryList(q, "medicos", "medicos[]"),
	}

	if v := queryFirst(q, "all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return Raw{}, apperrors.Validation("all must be a boolean")
		}
		raw.All = all
	}

	var err error
	if raw.Limit, err = queryInt(q, "limit"); err != nil {
		return Raw{}, err
	}
	if raw.Offset, err = queryInt(q, "offset"); err != nil {
		return Raw{}, err
	}
	return raw, nil
}

func queryInt(q url.Values, key string) (*FlexInt, error) {
	v := queryFirst(q, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.Validation("%s must be an integer", key)
	}
	f := FlexInt(n)
	return &f, nil
}

// Normalize validates raw and produces the canonical filter set.
func Normalize(raw Raw) (model.Filters, error) {
	if err := validate.Validate(raw); err != nil {
		return model.Filters{}, validationError(err)
	}

	desde, err := ParseDate("desde", raw.Desde)
	if err != nil {
		return model.Filters{}, err
	}
	hasta, err := ParseDate("hasta", raw.Hasta)
	if err != nil {
		return model.Filters{}, err
	}
	if desde.After(hasta) {
		return model.Filters{}, apperrors.Validation("desde must not be after hasta")
	}

	horaDesde, err := parseHour("horaDesde", raw.HoraDesde)
	if err != nil {
		return model.Filters{}, err
	}
	horaHasta, err := parseHour("horaHasta", raw.HoraHasta)
	if err != nil {
		return model.Filters{}, err
	}
	if horaDesde != "" && horaHasta != "" && horaDesde > horaHasta {
		return model.Filters{}, apperrors.Validation("horaDesde must not be after horaHasta")
	}

	estados, err := parseEstados(raw.Estados)
	if err != nil {
		return model.Filters{}, err
	}

	f := model.Filters{
		Desde:          desde,
		Hasta:          hasta,
		HoraDesde:      horaDesde,
		HoraHasta:      horaHasta,
		EPS:            strings.TrimSpace(raw.EPS),
		Estados:        estados,
		Especialidades: dedupe(raw.Especialidades, raw.Especialidad),
		Medicos:        dedupe(raw.Medicos, raw.Medico),
		All:            raw.All,
		Limit:          model.DefaultLimit,
	}
	if raw.Limit != nil {
		f.Limit = int(*raw.Limit)
	}
	if raw.Offset != nil {
		f.Offset = int(*raw.Offset)
	}
	if f.All {
		f = f.Unbounded()
	}
	return f, nil
}

// NormalizeUnpaged is Normalize for listings that are shown whole: without
// an explicit limit or offset every matching slot is returned.
func NormalizeUnpaged(raw Raw) (model.Filters, error) {
	f, err := Normalize(raw)
	if err != nil {
		return model.Filters{}, err
	}
	if raw.Limit == nil && raw.Offset == nil {
		f = f.Unbounded()
	}
	return f, nil
}

// ParseDate reads an ISO date, ignoring anything after the first ten characters
// so full timestamps are accepted.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, apperrors.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	t, err := time.Parse(model.DateLayout, s[:10])
	if err != nil {
		return time.Time{}, apperrors.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

var hourLayouts = []string{"15:04", "15:04:05"}

// parseHour returns the hour as zero-padded "HH:MM", or "" when s is blank.
func parseHour(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range hourLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", apperrors.Validation("%s must be a time in HH:MM format", field)
}

// parseEstados defaults to every category when the field is absent. An
// explicit empty list disables the status filter.
func parseEstados(list StringList) ([]model.StatusCategory, error) {
	if list == nil {
		return append([]model.StatusCategory(nil), model.AllStatusCategories...), nil
	}
	seen := make(map[model.StatusCategory]struct{}, len(list))
	out := make([]model.StatusCategory, 0, len(list))
	for _, s := range list {
		c, ok := model.ParseStatusCategory(s)
		if !ok {
			return nil, apperrors.Validation("unknown estado %q", s)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func validationError(err error) error {
	return apperrors.Validation("%s", err.Error())
}
