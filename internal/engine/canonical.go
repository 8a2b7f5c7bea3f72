package engine

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"
)

// CanonicalGETParams URL-encodes each key/value, sorts keys
// lexicographically, and joins as "k=v&k=v". An empty map serializes
// to "".
func CanonicalGETParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(parts, "&")
}

// CanonicalBodyParams emits the literal "{}" for an empty body and
// otherwise the canonical JSON (sorted keys, no whitespace) of params,
// so the signed body never depends on map iteration order.
func CanonicalBodyParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	return CanonicalJSON(params)
}

// CanonicalJSON renders v recursively with array order preserved and
// object keys sorted by UTF-16 code unit, no whitespace anywhere.
func CanonicalJSON(v any) string {
	var b strings.Builder
	writeCanonicalJSON(&b, v)
	return b.String()
}

func writeCanonicalJSON(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		writeCanonicalObject(b, val)
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalJSON(b, item)
		}
		b.WriteByte(']')
	case string:
		writeJSONString(b, val)
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int:
		fmt.Fprintf(b, "%d", val)
	case int64:
		fmt.Fprintf(b, "%d", val)
	case float64:
		writeJSONNumber(b, val)
	default:
		// Unsupported types never reach the signer in practice — the
		// adapter only ever hands the engine JSON-shaped request bodies.
		b.WriteString("null")
	}
}

func writeCanonicalObject(b *strings.Builder, obj map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sortByUTF16(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(b, k)
		b.WriteByte(':')
		writeCanonicalJSON(b, obj[k])
	}
	b.WriteByte('}')
}

// sortByUTF16 sorts keys by UTF-16 code unit order, matching a
// JavaScript engine's native string comparison rather than Go's
// byte-wise string less-than (they diverge outside the BMP).
func sortByUTF16(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return utf16Less(keys[i], keys[j])
	})
}

func utf16Less(a, b string) bool {
	au, bu := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(au) && i < len(bu); i++ {
		if au[i] != bu[i] {
			return au[i] < bu[i]
		}
	}
	return len(au) < len(bu)
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

func writeJSONNumber(b *strings.Builder, f float64) {
	if f == float64(int64(f)) {
		fmt.Fprintf(b, "%d", int64(f))
		return
	}
	fmt.Fprintf(b, "%g", f)
}
