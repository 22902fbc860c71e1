package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Pointer
// fields distinguish "absent" from an explicit false/zero so the file can
// turn defaults off.
type FileConfig struct {
	Output string `yaml:"output" json:"output"`
	Splits int    `yaml:"splits" json:"splits"`

	PreserveStructure *bool  `yaml:"preserveStructure" json:"preserveStructure"`
	IncludeMetadata   *bool  `yaml:"includeMetadata" json:"includeMetadata"`
	PageMarker        string `yaml:"pageMarker" json:"pageMarker"`

	PDF     bool `yaml:"pdf" json:"pdf"`
	Verbose bool `yaml:"verbose" json:"verbose"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, picking the codec by
// extension and trying both when the extension is unknown.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields the
// caller did not set explicitly on the command line. setFlags reports, per
// logical field name, whether a flag was given.
func ApplyFileConfig(cfg *Config, fc FileConfig, setFlags map[string]bool) {
	if cfg == nil {
		return
	}
	if fc.Output != "" && !setFlags["output"] {
		cfg.OutputDir = fc.Output
	}
	if fc.Splits > 0 && !setFlags["splits"] {
		cfg.Splits = fc.Splits
	}
	if fc.PreserveStructure != nil && !setFlags["preserve-structure"] {
		cfg.PreserveStructure = *fc.PreserveStructure
	}
	if fc.IncludeMetadata != nil && !setFlags["include-metadata"] {
		cfg.IncludeMetadata = *fc.IncludeMetadata
	}
	if fc.PageMarker != "" && !setFlags["page-marker"] {
		cfg.PageMarker = fc.PageMarker
	}
	if fc.PDF && !setFlags["pdf"] {
		cfg.WritePDF = true
	}
	if fc.Verbose && !setFlags["verbose"] {
		cfg.Verbose = true
	}
	if fc.Cache.Dir != "" && !setFlags["cache-dir"] {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 && !setFlags["cache-max-age"] {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
}
