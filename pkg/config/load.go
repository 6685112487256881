package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var requiredKeys = []string{"youtube_urls", "delays", "browser", "rotation"}

var requiredDelayKeys = []string{"min_watch_time", "max_watch_time"}

// Load reads and validates the configuration file at path. JSON is the
// primary format; paths ending in .yaml or .yml are decoded as YAML.
func Load(path string) (*Settings, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS is Load against an arbitrary filesystem.
func LoadFS(fs afero.Fs, path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := decoderFor(path)

	// Decode untyped first so that missing keys and wrongly shaped sections
	// can be reported by name before the typed decode.
	var raw map[string]interface{}
	if err := dec.unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Path: path, Err: errors.New("document is empty")}
	}
	if err := validateShape(raw); err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if err := dec.unmarshal(data, settings); err != nil {
		return nil, typeError(err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

type decoder struct {
	unmarshal func(data []byte, v interface{}) error
}

func decoderFor(path string) decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decoder{unmarshal: yaml.Unmarshal}
	default:
		return decoder{unmarshal: func(data []byte, v interface{}) error {
			d := json.NewDecoder(bytes.NewReader(data))
			if err := d.Decode(v); err != nil {
				return err
			}
			if d.More() {
				return errors.New("unexpected data after top-level value")
			}
			return nil
		}}
	}
}

func validateShape(raw map[string]interface{}) error {
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return invalid(key, "is required")
		}
	}

	urls, ok := raw["youtube_urls"].([]interface{})
	if !ok || len(urls) == 0 {
		return invalid("youtube_urls", "must be a non-empty list")
	}

	delays, ok := raw["delays"].(map[string]interface{})
	if !ok {
		return invalid("delays", "must be a mapping")
	}
	for _, key := range requiredDelayKeys {
		if _, ok := delays[key]; !ok {
			return invalid("delays."+key, "is required")
		}
	}

	for _, key := range []string{"browser", "rotation"} {
		if _, ok := raw[key].(map[string]interface{}); !ok {
			return invalid(key, "must be a mapping")
		}
	}

	return nil
}

// typeError converts a typed-decode failure into a ValidationError naming the
// offending field where the decoder exposes it.
func typeError(err error) error {
	var jsonErr *json.UnmarshalTypeError
	if errors.As(err, &jsonErr) {
		field := jsonErr.Field
		if field == "" {
			field = "document"
		}
		return invalid(field, fmt.Sprintf("must be of type %s", jsonErr.Type))
	}

	var yamlErr *yaml.TypeError
	if errors.As(err, &yamlErr) && len(yamlErr.Errors) > 0 {
		return invalid("document", yamlErr.Errors[0])
	}

	return invalid("document", err.Error())
}
