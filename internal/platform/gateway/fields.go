package gateway

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
)

// Fields is a partial record as supplied by a caller. Keys may use either the
// canonical camelCase names ("totalBeds") or the backend's alternate spellings
// ("total_beds_c", "Name"); Canonical folds both onto one set.
type Fields map[string]any

// CanonicalKey maps an alternate field spelling to its canonical name.
func CanonicalKey(key string) string {
	k := strings.TrimSpace(key)
	k = strings.TrimSuffix(k, "_c")
	if k == "" {
		return k
	}
	if strings.Contains(k, "_") {
		parts := strings.Split(strings.ToLower(k), "_")
		var b strings.Builder
		for i, p := range parts {
			if p == "" {
				continue
			}
			if i == 0 || b.Len() == 0 {
				b.WriteString(p)
				continue
			}
			r, size := utf8.DecodeRuneInString(p)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(p[size:])
		}
		return b.String()
	}
	if k == strings.ToUpper(k) {
		return strings.ToLower(k)
	}
	r, size := utf8.DecodeRuneInString(k)
	return string(unicode.ToLower(r)) + k[size:]
}

// Canonical returns a copy of f keyed by canonical names. When both a
// canonical key and an alternate spelling of it are present, the canonical
// key wins; among alternates the lexically first key wins.
func (f Fields) Canonical() Fields {
	out := make(Fields, len(f))
	var aliases []string
	for k, v := range f {
		ck := CanonicalKey(k)
		if ck == k {
			out[k] = v
			continue
		}
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	for _, k := range aliases {
		ck := CanonicalKey(k)
		if _, ok := out[ck]; !ok {
			out[ck] = f[k]
		}
	}
	return out
}

// decode overlays fields onto base and returns the result as a fresh value.
// Each supplied top-level field replaces the prior value wholesale; absent
// fields keep what base had. The id field is never taken from input.
func decode[T any](base T, fields Fields, hooks []mapstructure.DecodeHookFunc) (T, error) {
	merged, err := toMap(base)
	if err != nil {
		return base, err
	}
	for k, v := range fields.Canonical() {
		if k == "id" {
			continue
		}
		merged[k] = v
	}

	var out T
	chain := make([]mapstructure.DecodeHookFunc, 0, len(hooks)+1)
	chain = append(chain, hooks...)
	chain = append(chain, mapstructure.DecodeHookFuncType(textToStructured))

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(chain...),
	})
	if err != nil {
		return base, err
	}
	if err := dec.Decode(merged); err != nil {
		return base, err
	}
	return out, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return m, nil
}

// textToStructured accepts the serialized-text encoding of a structured field:
// a JSON string destined for a slice, map or struct is parsed first. Text that
// does not parse becomes an empty structure.
func textToStructured(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Struct, reflect.Map:
	default:
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	var parsed any
	if s == "" || json.Unmarshal([]byte(s), &parsed) != nil {
		return emptyFor(to), nil
	}
	switch parsed.(type) {
	case []any:
		if to.Kind() == reflect.Slice {
			return parsed, nil
		}
	case map[string]any:
		if to.Kind() != reflect.Slice {
			return parsed, nil
		}
	}
	return emptyFor(to), nil
}

func emptyFor(to reflect.Type) any {
	if to.Kind() == reflect.Slice {
		return []any{}
	}
	return map[string]any{}
}
