package collection

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/request"
)

const exportVersion = 1

type exportDoc struct {
	Version  int              `yaml:"version"`
	Requests []request.Entity `yaml:"requests"`
}

// Export writes every request as a YAML document. Edits still in the form are
// not included; callers save first.
func (s *Store) Export(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := exportDoc{Version: exportVersion, Requests: s.Requests()}
	if err := enc.Encode(doc); err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "encode export")
	}
	return enc.Close()
}

// Import appends the requests of a YAML export. Ids that are missing or
// already taken are replaced. The active selection is unchanged.
func (s *Store) Import(r io.Reader) (int, error) {
	var doc exportDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, errdef.Wrap(errdef.CodeParse, err, "decode import")
	}
	if doc.Version > exportVersion {
		return 0, errdef.New(errdef.CodeParse, "unsupported export version %d", doc.Version)
	}

	for _, e := range doc.Requests {
		if e.ID == "" || s.indexOf(e.ID) >= 0 {
			e.ID = s.nextID()
		}
		s.state.Requests = append(s.state.Requests, normalize(e))
	}
	if len(doc.Requests) == 0 {
		return 0, nil
	}
	s.listener.RequestsChanged()
	return len(doc.Requests), s.persist()
}
