package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// UpsertModel renders INSERT ... ON CONFLICT (key) DO UPDATE for a struct
// with db tags. Every non-key column is overwritten; extra assignments such
// as "deleted_at = NULL" are appended verbatim.
func UpsertModel(table, key string, model any, extra ...string) (string, []any, error) {
	columns, values, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	w := &writer{}
	w.sql.WriteString("INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (")
	for i, v := range values {
		if i > 0 {
			w.sql.WriteString(", ")
		}
		w.bind(v)
	}
	w.sql.WriteString(") ON CONFLICT (" + key + ") DO UPDATE SET ")

	updates := make([]string, 0, len(columns)+len(extra))
	for _, col := range columns {
		if col != key {
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}
	updates = append(updates, extra...)
	if len(updates) == 0 {
		return "", nil, fmt.Errorf("upsert on %s has nothing to update", table)
	}
	w.sql.WriteString(strings.Join(updates, ", "))
	return w.sql.String(), w.args, nil
}

func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	columns := make([]string, 0, t.NumField())
	values := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.Field(i).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return columns, values, nil
}
