package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oxhq/stereoscope/internal/apperr"
	"github.com/oxhq/stereoscope/internal/classify"
)

// optionFile is the on-disk shape of each of the three optional override
// files: a flat JSON array of strings appended to the built-in set.
type optionFile []string

// LoadExtensions reads the three optional JSON override files (primitives,
// ignored calls, type-modifier regex fragments) into a classify.Extensions.
// A path left empty is skipped and contributes nothing, per spec §7: option
// files that are absent use only the built-in tables. A path that is
// specified but unreadable or malformed fails the process.
func LoadExtensions(primitivesPath, ignoredCallsPath, typeModifiersPath string) (classify.Extensions, error) {
	var ext classify.Extensions

	primitives, err := readOptionFile(primitivesPath)
	if err != nil {
		return ext, apperr.New(apperr.CodeOptionFile, fmt.Errorf("primitives file: %w", err))
	}
	ignored, err := readOptionFile(ignoredCallsPath)
	if err != nil {
		return ext, apperr.New(apperr.CodeOptionFile, fmt.Errorf("ignored-calls file: %w", err))
	}
	modifiers, err := readOptionFile(typeModifiersPath)
	if err != nil {
		return ext, apperr.New(apperr.CodeOptionFile, fmt.Errorf("type-modifiers file: %w", err))
	}

	ext.Primitives = primitives
	ext.IgnoredCalls = ignored
	ext.TypeModifiers = modifiers
	return ext, nil
}

func readOptionFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var contents optionFile
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return contents, nil
}
