// Package config loads YAML configuration files into typed structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Load decodes filename into target and validates the result. ${VAR}
// references are expanded from the environment first. Fields the file
// omits keep the values target already holds.
func Load[T any](filename string, target *T) error {
	if err := decode(filename, target); err != nil {
		return err
	}
	return check(target)
}

// LoadOptional is Load for files that may not exist: a missing file leaves
// target untouched, but target is validated either way.
func LoadOptional[T any](filename string, target *T) error {
	err := decode(filename, target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return check(target)
}

func decode(filename string, target any) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}
	return nil
}

func check(target any) error {
	v, ok := target.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
