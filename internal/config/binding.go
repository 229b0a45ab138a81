package config

import (
	"fmt"
	"reflect"
	"strconv"
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// bindEnv overwrites fields of target whose env tag is present in lookup.
// Absent variables leave the current value in place.
func bindEnv(lookup LookupFunc, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct")
	}
	return bindFields(lookup, v.Elem())
}

func bindFields(lookup LookupFunc, sv reflect.Value) error {
	st := sv.Type()

	for i := 0; i < sv.NumField(); i++ {
		field := sv.Field(i)
		meta := st.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := bindFields(lookup, field); err != nil {
				return err
			}
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}

		raw, ok := lookup(key)
		if !ok {
			continue
		}

		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
