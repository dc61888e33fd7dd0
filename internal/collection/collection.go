// Package collection owns the list of saved requests, the active selection and
// the save/restore contract with the persistence backend.
package collection

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/store"
)

const (
	StateKey         = "restpad.state"
	DefaultPanelSize = 300
)

// State is the persisted snapshot.
type State struct {
	Requests      []request.Entity `json:"requests"`
	ActiveID      string           `json:"activeId,omitempty"`
	LastPanelSize int              `json:"lastPanelSize"`
}

// Form is the live editor bound to the active request.
type Form interface {
	Capture() request.Fields
	Fill(e request.Entity)
}

// Listener receives view refresh hints. Neither call carries data.
type Listener interface {
	RequestsChanged()
	ResponseReset()
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithIDs overrides id allocation, mainly for tests.
func WithIDs(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

type Store struct {
	kv       store.KV
	form     Form
	listener Listener
	log      *slog.Logger
	nextID   func() string
	state    State
}

func New(kv store.KV, form Form, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		form:     form,
		listener: nopListener{},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		nextID:   NewID,
		state:    State{Requests: []request.Entity{}, LastPanelSize: DefaultPanelSize},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a time-ordered UUID, falling back to a random one.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load restores the collection. Unreadable or malformed data is logged and
// treated as an empty collection, which gets one default request.
func (s *Store) Load() error {
	s.state = s.readState()

	if len(s.state.Requests) == 0 {
		s.state.ActiveID = ""
		_, err := s.Create()
		return err
	}

	target := s.state.ActiveID
	if s.indexOf(target) < 0 {
		target = s.state.Requests[0].ID
	}
	s.state.ActiveID = ""
	_, err := s.Switch(target, false)
	return err
}

func (s *Store) readState() State {
	empty := State{Requests: []request.Entity{}, LastPanelSize: DefaultPanelSize}

	raw, ok, err := s.kv.Get(StateKey)
	if err != nil {
		s.log.Warn("read saved requests", "err", err)
		return empty
	}
	if !ok || raw == "" {
		return empty
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.Warn("discarding malformed saved requests", "err", err)
		return empty
	}
	if st.Requests == nil {
		st.Requests = []request.Entity{}
	}
	for i := range st.Requests {
		st.Requests[i] = normalize(st.Requests[i])
	}
	if st.LastPanelSize <= 0 {
		st.LastPanelSize = DefaultPanelSize
	}
	return st
}

// Create saves pending edits, appends a blank GET request and activates it.
func (s *Store) Create() (request.Entity, error) {
	if s.state.ActiveID != "" {
		if err := s.Save(true); err != nil {
			return request.Entity{}, err
		}
	}

	e := request.New(s.nextID())
	s.state.Requests = append(s.state.Requests, e)
	if err := s.persist(); err != nil {
		return e, err
	}
	s.listener.RequestsChanged()

	_, err := s.Switch(e.ID, false)
	return e.Clone(), err
}

// Switch activates id. With saveCurrent the active request's edits are
// captured first. Unknown ids are ignored.
func (s *Store) Switch(id string, saveCurrent bool) (bool, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	if saveCurrent && s.state.ActiveID != "" {
		if err := s.Save(true); err != nil {
			return false, err
		}
	}

	s.state.ActiveID = id
	s.listener.RequestsChanged()
	s.form.Fill(s.state.Requests[idx].Clone())
	s.listener.ResponseReset()
	return true, s.persist()
}

// Delete removes id unless it is the last request. Deleting the active request
// activates the first survivor without saving.
func (s *Store) Delete(id string) (bool, error) {
	if len(s.state.Requests) <= 1 {
		return false, nil
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	s.state.Requests = append(s.state.Requests[:idx], s.state.Requests[idx+1:]...)
	if id == s.state.ActiveID {
		s.state.ActiveID = ""
		if _, err := s.Switch(s.state.Requests[0].ID, false); err != nil {
			return true, err
		}
	} else {
		s.listener.RequestsChanged()
	}
	return true, s.persist()
}

// Save copies the form into the active request and persists everything.
// rerender only asks the listener to redraw the request list.
func (s *Store) Save(rerender bool) error {
	idx := s.indexOf(s.state.ActiveID)
	if idx < 0 {
		return nil
	}
	s.state.Requests[idx].Apply(s.form.Capture())
	if rerender {
		s.listener.RequestsChanged()
	}
	return s.persist()
}

// Update runs fn against the active request and persists the result without
// reading the form. The caller refills the form afterwards.
func (s *Store) Update(fn func(*request.Entity)) (request.Entity, bool, error) {
	idx := s.indexOf(s.state.ActiveID)
	if idx < 0 {
		return request.Entity{}, false, nil
	}
	fn(&s.state.Requests[idx])
	s.state.Requests[idx] = normalize(s.state.Requests[idx])
	s.listener.RequestsChanged()
	return s.state.Requests[idx].Clone(), true, s.persist()
}

func (s *Store) SetPanelSize(size int) error {
	if size <= 0 || size == s.state.LastPanelSize {
		return nil
	}
	s.state.LastPanelSize = size
	return s.persist()
}

func (s *Store) PanelSize() int {
	return s.state.LastPanelSize
}

func (s *Store) ActiveID() string {
	return s.state.ActiveID
}

func (s *Store) Active() (request.Entity, bool) {
	return s.Find(s.state.ActiveID)
}

func (s *Store) Find(id string) (request.Entity, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return request.Entity{}, false
	}
	return s.state.Requests[idx].Clone(), true
}

func (s *Store) Len() int {
	return len(s.state.Requests)
}

func (s *Store) Requests() []request.Entity {
	out := make([]request.Entity, len(s.state.Requests))
	for i, e := range s.state.Requests {
		out[i] = e.Clone()
	}
	return out
}

// Snapshot returns the exact bytes persist would write.
func (s *Store) Snapshot() ([]byte, error) {
	data, err := json.Marshal(s.state)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "encode requests")
	}
	return data, nil
}

func (s *Store) persist() error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := s.kv.Set(StateKey, string(data)); err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "save requests")
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range s.state.Requests {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func normalize(e request.Entity) request.Entity {
	if e.Method == "" {
		e.Method = request.MethodGet
	}
	if e.BodyType == "" {
		e.BodyType = request.BodyNone
	}
	if e.Name == "" {
		e.Name = request.DefaultName
	}
	return e.Clone()
}

type nopListener struct{}

func (nopListener) RequestsChanged() {}
func (nopListener) ResponseReset()   {}
