package tasks

import (
	"bytes"
	"encoding/json"
)

// EncodeJSON renders v with 2-space indentation and no trailing newline.
// &, <, >, U+2028 and U+2029 are written literally, also inside values whose
// MarshalJSON escaped them.
func EncodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return unescapeJSON(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

var literalEscapes = map[string]string{
	`\u0026`: "&",
	`\u003c`: "<",
	`\u003e`: ">",
	`\u2028`: "\u2028",
	`\u2029`: "\u2029",
}

// unescapeJSON replaces the escapes in literalEscapes. Escape sequences are
// consumed pairwise so an escaped backslash followed by "u0026" is kept.
func unescapeJSON(data []byte) string {
	if !bytes.Contains(data, []byte(`\u`)) {
		return string(data)
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			if lit, ok := literalEscapes[string(data[i:i+6])]; ok {
				out = append(out, lit...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return string(out)
}
