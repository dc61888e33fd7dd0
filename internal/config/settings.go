package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/unkn0wn-root/restpad/internal/errdef"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatJSON SettingsFormat = "json"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultLogLevel    = "info"
	defaultBackend     = "sqlite"
)

type Settings struct {
	DefaultTheme string            `json:"default_theme" toml:"default_theme"`
	LogLevel     string            `json:"log_level"     toml:"log_level"`
	Storage      StorageSettings   `json:"storage"       toml:"storage"`
	HTTP         HTTPSettings      `json:"http"          toml:"http"`
	Telemetry    TelemetrySettings `json:"telemetry"     toml:"telemetry"`
	Layout       LayoutSettings    `json:"layout"        toml:"layout"`
}

type StorageSettings struct {
	// Backend is one of sqlite, file or memory.
	Backend string `json:"backend" toml:"backend"`
	Path    string `json:"path"    toml:"path"`
}

type HTTPSettings struct {
	Timeout         string `json:"timeout"          toml:"timeout"`
	FollowRedirects *bool  `json:"follow_redirects" toml:"follow_redirects"`
	Insecure        bool   `json:"insecure"         toml:"insecure"`
	Proxy           string `json:"proxy"            toml:"proxy"`
	HTTP2           bool   `json:"http2"            toml:"http2"`
}

type TelemetrySettings struct {
	Endpoint    string `json:"endpoint"     toml:"endpoint"`
	Insecure    bool   `json:"insecure"     toml:"insecure"`
	ServiceName string `json:"service_name" toml:"service_name"`
}

// TimeoutDuration parses Timeout, using the default for empty or invalid values.
func (h HTTPSettings) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(h.Timeout))
	if err != nil || d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}

func (h HTTPSettings) Follow() bool {
	return h.FollowRedirects == nil || *h.FollowRedirects
}

// StoragePath resolves the state store location for the configured backend.
func (s StorageSettings) StoragePath() string {
	if p := strings.TrimSpace(s.Path); p != "" {
		return p
	}
	if s.Backend == "file" {
		return filepath.Join(Dir(), "state.json")
	}
	return filepath.Join(Dir(), "restpad.db")
}

type SettingsFormat string
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

func DefaultSettings() Settings {
	return normaliseSettings(Settings{})
}

// tries loading TOML first, then JSON, then returns default settings if neither exists.
// parse errors fail immediately but missing files just skip to the next format.
func LoadSettings() (Settings, SettingsHandle, error) {
	dir := Dir()
	candidates := []SettingsHandle{
		{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(dir, "settings.json"), Format: SettingsFormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				errdef.Wrap(errdef.CodeConfig, err, "read settings %q", candidate.Path),
			)
			continue
		}

		settings, err := decodeSettings(data, candidate.Format)
		if err != nil {
			return Settings{}, SettingsHandle{}, errdef.Wrap(
				errdef.CodeConfig,
				err,
				"parse settings %q",
				candidate.Path,
			)
		}
		return normaliseSettings(settings), candidate, nil
	}

	if accumulated != nil {
		return Settings{}, SettingsHandle{}, accumulated
	}

	return DefaultSettings(), SettingsHandle{
		Path:   candidates[0].Path,
		Format: SettingsFormatTOML,
	}, nil
}

func normaliseSettings(s Settings) Settings {
	s.Layout = NormaliseLayoutSettings(s.Layout)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.LogLevel == "" {
		s.LogLevel = defaultLogLevel
	}
	s.Storage.Backend = strings.ToLower(strings.TrimSpace(s.Storage.Backend))
	if s.Storage.Backend == "" {
		s.Storage.Backend = defaultBackend
	}
	if strings.TrimSpace(s.HTTP.Timeout) == "" {
		s.HTTP.Timeout = defaultHTTPTimeout.String()
	}
	return s
}

func decodeSettings(data []byte, format SettingsFormat) (Settings, error) {
	var settings Settings
	switch format {
	case SettingsFormatTOML:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return Settings{}, err
		}
	case SettingsFormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&settings); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, errdef.New(errdef.CodeConfig, "unsupported settings format %q", format)
	}
	return settings, nil
}

func SaveSettings(settings Settings, handle SettingsHandle) error {
	settings = normaliseSettings(settings)
	path := handle.Path
	format := handle.Format
	if path == "" {
		path = filepath.Join(Dir(), "settings.toml")
	}
	if format == "" {
		format = SettingsFormatTOML
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "ensure settings directory")
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case SettingsFormatTOML:
		data, err = toml.Marshal(settings)
	case SettingsFormatJSON:
		buffer := &bytes.Buffer{}
		encoder := json.NewEncoder(buffer)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(settings); err == nil {
			data = buffer.Bytes()
		}
	default:
		return errdef.New(errdef.CodeConfig, "unsupported settings format %q", format)
	}
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "encode settings")
	}

	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write settings %q", path)
	}
	return nil
}

// write to temp file then rename so readers never see partial data.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".restpad-settings-*.tmp")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		closeErr := tmp.Close()
		if closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}

	if err := tmp.Chmod(perm); err != nil {
		closeErr := tmp.Close()
		if closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
