package config

import (
	"fmt"
	"os"

	"pat-tracker/internal/season"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type seasonsFile struct {
	Seasons []season.Season `koanf:"seasons"`
}

// LoadSeasons layers the built-in season table with an optional YAML file.
// A file that defines `seasons` replaces the built-in list wholesale.
func LoadSeasons(path string) (*season.Table, error) {
	k := koanf.New(".")

	defaults := seasonsFile{Seasons: season.Builtin}
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load season defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("seasons file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load seasons file %s: %w", path, err)
		}
	}

	var out seasonsFile
	if err := k.Unmarshal("", &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seasons: %w", err)
	}

	return season.NewTable(out.Seasons), nil
}
