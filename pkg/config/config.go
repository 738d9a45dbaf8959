package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"sigs.k8s.io/yaml"
)

// setDefaults sets default values for a struct using 'default' tags.
// Nested structs are filled recursively; nil pointers to bool and int get a
// freshly allocated default so that an explicit false or 0 survives.
func setDefaults(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}

	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := rt.Field(i).Tag.Get("default")
		if tag == "{}" {
			// If it's a struct pointer, initialize it and set its defaults
			if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
				if field.IsNil() {
					field.Set(reflect.New(field.Type().Elem()))
				}
				setDefaults(field.Interface())
			}
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			setDefaults(field.Addr().Interface())
		case reflect.String:
			if field.String() == "" {
				field.SetString(tag)
			}
		case reflect.Bool:
			if !field.Bool() && tag != "" {
				val, _ := strconv.ParseBool(tag)
				field.SetBool(val)
			}
		case reflect.Int:
			if field.Int() == 0 && tag != "" {
				val, _ := strconv.Atoi(tag)
				field.SetInt(int64(val))
			}
		case reflect.Ptr:
			if !field.IsNil() || tag == "" {
				continue
			}
			switch field.Type().Elem().Kind() {
			case reflect.Bool:
				val, _ := strconv.ParseBool(tag)
				field.Set(reflect.ValueOf(&val))
			case reflect.Int:
				val, _ := strconv.Atoi(tag)
				field.Set(reflect.ValueOf(&val))
			}
		}
	}
}

// Default returns the configuration used when no config file is present
func Default() Config {
	var cfg Config
	setDefaults(&cfg)
	return cfg
}

// ReadConfigFromBytes parses and validates config from raw bytes
func ReadConfigFromBytes(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %v", err)
	}

	setDefaults(&cfg)

	if err := validateStore(cfg.Store); err != nil {
		return Config{}, err
	}
	if err := validateDefaults(cfg.Defaults); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ReadConfig reads config from a file path
func ReadConfig(path string) (Config, error) {
	if !filepath.IsAbs(path) {
		return Config{}, fmt.Errorf("config path must be absolute: %s", path)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return ReadConfigFromBytes(data)
}

func validateStore(store StoreConfig) error {
	switch store.Kind {
	case StoreKindMemory:
		return nil
	case StoreKindFile:
		if store.File.Path == "" {
			return fmt.Errorf("path is required for file store")
		}
	case StoreKindConfigMap:
		if store.ConfigMap.Name == "" {
			return fmt.Errorf("name is required for configmap store")
		}
	case StoreKindS3:
		if store.S3.Bucket == "" {
			return fmt.Errorf("bucket is required for s3 store")
		}
		if store.S3.Region == "" {
			return fmt.Errorf("region is required for s3 store")
		}
	default:
		return fmt.Errorf("unsupported store kind: %s", store.Kind)
	}
	return nil
}

func validateDefaults(defaults DefaultsConfig) error {
	start, end := *defaults.BusinessStartHour, *defaults.BusinessEndHour
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return fmt.Errorf("default business hours must be between 0 and 23, got %d-%d", start, end)
	}
	if start >= end {
		return fmt.Errorf("default business start hour %d must be earlier than end hour %d", start, end)
	}
	return nil
}
