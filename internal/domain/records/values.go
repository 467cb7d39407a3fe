package records

import "time"

// Helpers de lectura de documentos: los adapters normalizan tipos al leer,
// pero el JSONB de Postgres devuelve tiempos como texto y números como
// float64, así que los dominios leen siempre a través de estas funciones.

func AsString(v any) string {
	s, _ := v.(string)
	return s
}

func AsBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func AsInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return 0
}

func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func AsTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// AsStringPtr distingue ausente/null de string presente.
func AsStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// AsTimePtr distingue ausente/null de timestamp presente.
func AsTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := AsTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

// AsMap devuelve el sub-documento, o un mapa vacío si falta.
func AsMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// AsIntPtr distingue ausente/null de entero presente (ratings opcionales).
func AsIntPtr(v any) *int {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case int, int32, int64, float32, float64:
		n := AsInt(v)
		return &n
	}
	return nil
}
