package bindings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/restpad/internal/errdef"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Source is the file a Map was built from. With no file on disk it names
// the TOML path a user would create.
type Source struct {
	Path   string
	Format Format
}

// searchOrder is the lookup order inside the config directory. The first
// file present wins.
var searchOrder = []struct {
	name   string
	format Format
}{
	{"bindings.toml", FormatTOML},
	{"bindings.yaml", FormatYAML},
	{"bindings.json", FormatJSON},
}

type bindingsFile struct {
	Bindings map[string][]string `toml:"bindings" yaml:"bindings" json:"bindings"`
}

// Load builds the Map for dir. Missing files yield the defaults; a file that
// is present but invalid is an error so a typo never silently resets keys.
func Load(dir string) (*Map, Source, error) {
	var readErrs error
	for _, cand := range searchOrder {
		src := Source{Path: filepath.Join(dir, cand.name), Format: cand.format}
		data, err := os.ReadFile(src.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			readErrs = errors.Join(readErrs, errdef.Wrap(errdef.CodeConfig, err, "read bindings %q", src.Path))
			continue
		}

		overrides, err := decode(data, src.Format)
		if err != nil {
			return nil, Source{}, errdef.Wrap(errdef.CodeConfig, err, "parse bindings %q", src.Path)
		}
		m, err := compile(overrides)
		if err != nil {
			return nil, Source{}, errdef.Wrap(errdef.CodeConfig, err, "apply bindings %q", src.Path)
		}
		return m, src, nil
	}
	if readErrs != nil {
		return nil, Source{}, readErrs
	}

	m, err := compile(nil)
	if err != nil {
		return nil, Source{}, err
	}
	return m, Source{Path: filepath.Join(dir, searchOrder[0].name), Format: FormatTOML}, nil
}

func decode(data []byte, format Format) (map[ActionID][]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var file bindingsFile
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &file)
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatJSON:
		err = json.Unmarshal(data, &file)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	overrides := make(map[ActionID][]string, len(file.Bindings))
	for name, specs := range file.Bindings {
		id := ActionID(name)
		if _, ok := definitionLookup[id]; !ok {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		keys := make([]string, 0, len(specs))
		for _, spec := range specs {
			key, err := parseKey(spec)
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", name, err)
			}
			keys = append(keys, key)
		}
		overrides[id] = keys
	}
	return overrides, nil
}
