// Package render substitutes {{ name }} placeholders in message
// templates. Rendering is total: unknown names become empty strings and
// malformed delimiters are left verbatim.
package render

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render substitutes named placeholders from fields. It never fails for
// any well-formed template and field mapping.
func Render(tpl string, fields map[string]any) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(token string) string {
		name := placeholder.FindStringSubmatch(token)[1]
		value, ok := fields[name]
		if !ok || value == nil {
			return ""
		}
		return formatValue(value)
	})
}

// formatValue renders a field value. Mathematically integral floats
// drop the decimal point; everything else uses its natural string form.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
