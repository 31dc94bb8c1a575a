package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Getenv looks up one environment variable.
type Getenv func(key string) string

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with a custom lookup. Tests pass a map-backed getenv.
func LoadFrom(getenv Getenv) (*Config, error) {
	cfg := &Config{}

	if err := decode(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Sources.Backend = strings.ToLower(cfg.Sources.Backend)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envField is one tagged struct field.
type envField struct {
	name     string
	alt      string
	def      string
	hasDef   bool
	required bool
}

func parseTags(f reflect.StructField) (envField, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return envField{}, false
	}
	def, hasDef := f.Tag.Lookup("default")
	return envField{
		name:     name,
		alt:      f.Tag.Get("envAlt"),
		def:      def,
		hasDef:   hasDef,
		required: f.Tag.Get("required") == "true",
	}, true
}

// lookup returns the raw value for the field, falling back to the
// alternate name and then the default. ok is false when nothing is set.
func (e envField) lookup(getenv Getenv) (string, bool) {
	if v := getenv(e.name); v != "" {
		return v, true
	}
	if e.alt != "" {
		if v := getenv(e.alt); v != "" {
			return v, true
		}
	}
	return e.def, e.hasDef
}

var durationType = reflect.TypeOf(time.Duration(0))

// decode fills v from the environment. Every problem is reported, not just
// the first, so one run shows the whole broken .env.
func decode(v reflect.Value, getenv Getenv) error {
	var errs []error
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := decode(fv, getenv); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		ef, ok := parseTags(sf)
		if !ok {
			continue
		}
		raw, ok := ef.lookup(getenv)
		if !ok {
			if ef.required {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", ef.name))
			}
			continue
		}
		if err := assign(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", ef.name, raw, err))
		}
	}
	return errors.Join(errs...)
}

// assign parses raw into the field's kind.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
