package templateutils

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"
)

var Funcs = template.FuncMap{
	"json":       ToJSON,
	"jsonIndent": ToJSONIndent,

	// envSuffix turns a function name into the suffix of its concurrency override variable.
	"envSuffix": EnvSuffix,
}

func ToJSON(v any) (string, error) {
	return encode(v, "")
}

// ToJSONIndent encodes v with a 2-space indent, the layout of JSON.stringify(v, null, 2).
func ToJSONIndent(v any) (string, error) {
	return encode(v, "  ")
}

func encode(v any, indent string) (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func EnvSuffix(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), "-", "_")
}
