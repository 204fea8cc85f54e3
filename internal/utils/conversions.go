package utils

// AsMap returns v as a JSON object, or nil when it is anything else.
func AsMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// FirstString returns the first non-empty string value found under keys.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}
