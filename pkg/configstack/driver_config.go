// Package configstack discovers and layers the driver configuration files.
// Priority: env::file > env::dropin_dir > default::dropin_dir > default
// config file; inside a drop-in directory the files apply in lexical order,
// later keys winning.
package configstack

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	defs "cellrun/definitions"
	"cellrun/pkg/utils"
)

// Sections read from the INI files; anything else is ignored.
var configSections = []string{"driver", "log", "trace"}

// DriverConfig carries everything the adapter can be told from outside:
// where the administration binary lives, how to log, where to ship traces.
type DriverConfig struct {
	Binary string

	LogLevel  string
	LogFormat string
	LogOutput string
	Debug     bool

	TraceEndpoint string
	TraceInsecure bool
}

// DiscoverConfigFiles returns the config files to load, in application
// order. An empty result with a nil error means "run on defaults".
func DiscoverConfigFiles() ([]string, error) {
	if override := os.Getenv(defs.CellrunConfEnv); override != "" {
		if !utils.FileExist(override) {
			return nil, os.ErrNotExist
		}
		return []string{override}, nil
	}

	if dirByEnv := os.Getenv(defs.CellrunConfDirEnv); dirByEnv != "" {
		files, err := listConfigDir(dirByEnv)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			return files, nil
		}
	}

	files, err := listConfigDir(defs.CellrunConfDropin)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(files) > 0 {
		return files, nil
	}

	base := filepath.Join(defs.CellrunConfDir, defs.DefaultConf)
	if !utils.FileExist(base) {
		return nil, nil
	}
	return []string{base}, nil
}

func listConfigDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".conf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Load discovers and layers the config files into a DriverConfig. Missing
// files are not an error; the zero config is valid and means "jailhouse on
// PATH, stderr logging, no tracing".
func Load() (*DriverConfig, error) {
	files, err := DiscoverConfigFiles()
	if err != nil {
		return nil, err
	}

	cfg := &DriverConfig{}
	for _, f := range files {
		fields, err := utils.ParseINI(f, configSections)
		if err != nil {
			return nil, err
		}
		cfg.apply(fields)
	}
	return cfg, nil
}

func (cfg *DriverConfig) apply(fields map[string]string) {
	if v, ok := fields["binary"]; ok {
		cfg.Binary = v
	}
	if v, ok := fields["log_level"]; ok {
		cfg.LogLevel = v
	}
	if v, ok := fields["log_format"]; ok {
		cfg.LogFormat = v
	}
	if v, ok := fields["log_output"]; ok {
		cfg.LogOutput = v
	}
	if v, ok := fields["debug"]; ok {
		cfg.Debug = parseBool(v)
	}
	if v, ok := fields["trace_endpoint"]; ok {
		cfg.TraceEndpoint = v
	}
	if v, ok := fields["trace_insecure"]; ok {
		cfg.TraceInsecure = parseBool(v)
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
