package skills

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseList decodes a flat skill list such as "['Python', 'sql']". Single
// quotes are swapped for double quotes and the result is read as a JSON array
// of strings. Elements come back trimmed and lower-cased; null and empty
// elements are dropped. ok is false when the text is not such an array.
func ParseList(raw string) (skills []string, ok bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "'", `"`)
	if s == "" || !gjson.Valid(s) {
		return nil, false
	}
	res := gjson.Parse(s)
	if !res.IsArray() {
		return nil, false
	}

	out := make([]string, 0, len(res.Array()))
	for _, el := range res.Array() {
		switch el.Type {
		case gjson.Null:
			continue
		case gjson.String:
			if name := normalizeName(el.String()); name != "" {
				out = append(out, name)
			}
		default:
			return nil, false
		}
	}
	return out, true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
