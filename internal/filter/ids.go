package filter

import (
	"strconv"
	"strings"

	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
)

// MaxIDs bounds one bulk delete so the id list fits in a single statement's
// bind parameters.
const MaxIDs = 10_000

// IDsRequest is the body of a bulk delete. ids may be an array of numbers or
// strings, or a comma-separated string.
type IDsRequest struct {
	IDs StringList `json:"ids"`
}

// ParseIDs coerces raw ids to positive integers, dropping duplicates and
// keeping the order of first appearance.
func ParseIDs(raw StringList) ([]int64, error) {
	seen := make(map[int64]struct{}, len(raw))
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.Validation("invalid id %q: ids must be positive integers", s)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperrors.Validation("ids is required")
	}
	if len(ids) > MaxIDs {
		return nil, apperrors.Validation("at most %d ids can be deleted per request, got %d", MaxIDs, len(ids))
	}
	return ids, nil
}
