package facet

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jwalitptl/cupos-admin/internal/repository"
)

// Translator turns specialty codes into procedure (CUPS) codes.
type Translator struct {
	specialties repository.SpecialtyRepository
	fallback    map[string]string
}

// NewTranslator builds a translator. fallback maps specialty codes whose
// table entry has no CUPS to a configured code; codes absent from both
// translate to nothing.
func NewTranslator(specialties repository.SpecialtyRepository, fallback map[string]string) *Translator {
	fb := make(map[string]string, len(fallback))
	for k, v := range fallback {
		fb[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return &Translator{specialties: specialties, fallback: fb}
}

// IsProcedureCode reports whether s is already a six-digit CUPS code.
func IsProcedureCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Translate resolves codes to a deduplicated CUPS set. Six-digit codes pass
// through; other codes are looked up in the specialty table and then in the
// fallback table. An empty result for non-empty input means nothing matches.
func (t *Translator) Translate(ctx context.Context, codes []string) ([]string, error) {
	var (
		out       []string
		seen      = make(map[string]struct{})
		specCodes []string
	)
	add := func(code string) {
		if _, ok := seen[code]; ok || code == "" {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}

	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if IsProcedureCode(c) {
			add(c)
			continue
		}
		specCodes = append(specCodes, c)
	}
	if len(specCodes) == 0 {
		return out, nil
	}

	specs, err := t.specialties.FindByCodes(ctx, specCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to look up specialties: %w", err)
	}
	mapped := make(map[string][]string, len(specs))
	for _, s := range specs {
		if s.CUPS != nil {
			mapped[s.Code] = append(mapped[s.Code], splitCUPS(*s.CUPS)...)
		}
	}

	for _, c := range specCodes {
		if cups := mapped[c]; len(cups) > 0 {
			for _, code := range cups {
				add(code)
			}
			continue
		}
		add(t.fallback[c])
	}
	return out, nil
}

// splitCUPS reads a CUPS cell that may hold several codes.
func splitCUPS(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || unicode.IsSpace(r)
	})
}
