// Package config loads graphmorph run configuration from TOML or YAML files
// and watches input files for changes.
//
// A configuration file names the input tables, the output base path and any
// [pipeline.Options] field:
//
//	edges  = "edges.csv"
//	output = "out/network"
//	layouts = ["circle", "kk", "tree"]
//	formats = ["gif", "svg"]
//	hold = "1s"
//	transition = "2s"
//
//	[[modules]]
//	name = "ingest"
//	from = 1
//	to = 10
//
// Relative paths are resolved against the directory of the configuration
// file. Unknown keys are rejected.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// File is a decoded configuration file.
type File struct {
	Edges  string `toml:"edges" yaml:"edges"`
	Nodes  string `toml:"nodes" yaml:"nodes"`
	Output string `toml:"output" yaml:"output"`

	pipeline.Options `yaml:",inline"`

	// Path is the file the configuration was loaded from.
	Path string `toml:"-" yaml:"-"`
}

// FormatOf returns the syntax implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", gmerrors.New(gmerrors.ErrCodeInvalidFormat,
			"unsupported config file %s (want .toml, .yaml or .yml)", filepath.Base(path))
	}
}

// Decode reads a configuration document in the given syntax.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "parse TOML config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "unknown config keys: %v", undecoded)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "parse YAML config")
		}
	default:
		return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	return &f, nil
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, gmerrors.New(gmerrors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	f.resolve(filepath.Dir(path))
	return f, nil
}

func (f *File) resolve(dir string) {
	for _, p := range []*string{&f.Edges, &f.Nodes, &f.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Inputs returns the input files named by the configuration, including the
// configuration file itself.
func (f *File) Inputs() []string {
	var out []string
	for _, p := range []string{f.Path, f.Edges, f.Nodes} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
