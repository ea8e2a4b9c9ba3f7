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

// LookupFunc resolves one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadServer reads the server configuration from the process environment and
// validates it.
func LoadServer() (*Server, error) {
	return LoadServerFrom(os.LookupEnv)
}

// LoadServerFrom is LoadServer with an explicit variable source. Every
// malformed variable is reported, not only the first.
func LoadServerFrom(lookup LookupFunc) (*Server, error) {
	cfg := &Server{}

	var errs []error
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), "") {
		if err := b.apply(lookup); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envBinding ties one leaf field of Server to its variable.
type envBinding struct {
	path  string // Go path such as HTTP.Port, used in errors
	env   string
	def   string
	unit  string
	field reflect.Value
}

// envBindings flattens nested config sections into their env-tagged leaves.
func envBindings(v reflect.Value, prefix string) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		path := prefix + sf.Name
		if sf.Type.Kind() == reflect.Struct {
			out = append(out, envBindings(v.Field(i), path+".")...)
			continue
		}
		env := sf.Tag.Get("env")
		if env == "" {
			continue
		}
		out = append(out, envBinding{
			path:  path,
			env:   env,
			def:   sf.Tag.Get("default"),
			unit:  sf.Tag.Get("unit"),
			field: v.Field(i),
		})
	}
	return out
}

// apply sets the field from the variable, falling back to the default when
// the variable is unset or blank.
func (b envBinding) apply(lookup LookupFunc) error {
	raw, ok := lookup(b.env)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		raw = b.def
	}
	if raw == "" {
		return nil
	}

	parsed, err := parseEnvValue(b.field.Type(), b.unit, raw)
	if err != nil {
		return fmt.Errorf("%s (%s=%q): %w", b.path, b.env, raw, err)
	}
	b.field.Set(parsed)
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func parseEnvValue(t reflect.Type, unit, raw string) (reflect.Value, error) {
	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, errors.New("not a duration like 30s or 2m")
		}
		return reflect.ValueOf(d), nil
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(raw).Convert(t), nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, errors.New("not a boolean")
		}
		return reflect.ValueOf(v).Convert(t), nil
	case reflect.Int, reflect.Int64:
		var (
			n   int64
			err error
		)
		if unit == "bytes" {
			n, err = parseByteSize(raw)
		} else {
			n, err = strconv.ParseInt(raw, 10, 64)
		}
		if err != nil {
			return reflect.Value{}, err
		}
		v := reflect.New(t).Elem()
		if v.OverflowInt(n) {
			return reflect.Value{}, errors.New("out of range")
		}
		v.SetInt(n)
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported field type %s", t)
}

var byteUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// parseByteSize accepts a plain byte count or a count with a binary KB, MB
// or GB suffix, e.g. "100MB".
func parseByteSize(raw string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	mult := int64(1)
	for _, u := range byteUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New("not a byte size like 1048576 or 100MB")
	}
	if n > (1<<63-1)/mult {
		return 0, errors.New("byte size out of range")
	}
	return n * mult, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Server) Validate() error {
	var errs []string

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.HTTP.Port))
	}
	if c.HTTP.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.HTTP.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, "UPLOAD_MAX_BYTES must be positive")
	}
	if c.Upload.MaxFiles < 2 {
		errs = append(errs, fmt.Sprintf("UPLOAD_MAX_FILES (%d) must be at least 2", c.Upload.MaxFiles))
	}
	if c.Upload.PreviewRows < 0 {
		errs = append(errs, "PREVIEW_ROWS must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
