package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// StringList accepts a JSON array of strings or numbers, a single string
// (comma-separated values allowed) or a single number.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, raw := range items {
			s, err := scalarString(raw)
			if err != nil {
				return err
			}
			out = append(out, splitCSV(s)...)
		}
		*l = out
		return nil
	default:
		s, err := scalarString(data)
		if err != nil {
			return err
		}
		*l = splitCSV(s)
		return nil
	}
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(raw))
	}
	return n.String(), nil
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", s)
	}
	if v != float64(int(v)) {
		return fmt.Errorf("expected integer, got %q", s)
	}
	*n = FlexInt(v)
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// queryFirst reads a single value; repeated keys keep the first one.
func queryFirst(q url.Values, keys ...string) string {
	for _, k := range keys {
		if vs, ok := q[k]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	return ""
}

// queryList reads ?k=a&k=b as well as ?k=a,b, for every key given.
// It returns nil when none of the keys is present.
func queryList(q url.Values, keys ...string) StringList {
	var out StringList
	found := false
	for _, k := range keys {
		vs, ok := q[k]
		if !ok {
			continue
		}
		found = true
		for _, v := range vs {
			out = append(out, splitCSV(v)...)
		}
	}
	if found && out == nil {
		return StringList{}
	}
	return out
}

// dedupe trims, drops blanks and keeps the first occurrence of each value.
func dedupe(in ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range in {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
