// Package prefs handles fluidboard user preferences persistence.
// Preferences are stored in ~/.config/fluidboard/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the choices fluidboard remembers between runs.
type Prefs struct {
	Theme     string `toml:"theme"`
	Cluster   string `toml:"cluster,omitempty"`
	Namespace string `toml:"namespace,omitempty"`
	Kind      string `toml:"kind,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/fluidboard/prefs.toml"
	defaultTheme     = "Dracula"
)

// writeMu serializes Update so concurrent read-modify-write cycles do not
// drop each other's fields.
var writeMu sync.Mutex

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

func (p Prefs) normalized() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Cluster = strings.TrimSpace(p.Cluster)
	p.Namespace = strings.TrimSpace(p.Namespace)
	p.Kind = strings.TrimSpace(p.Kind)
	return p
}

// Load reads preferences from path (the default location when empty). A
// missing, unreadable or malformed file yields the defaults; preferences are
// never worth failing startup over, so the error is always nil.
func Load(path string) (Prefs, error) {
	resolved, err := resolve(path)
	if err != nil {
		return defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return defaults(), nil
	}
	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults(), nil
	}
	return p.normalized(), nil
}

// Save writes p to path, creating directories as needed. The file is
// replaced through a rename so a crash never leaves it half written.
func Save(path string, p Prefs) error {
	resolved, err := resolve(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolved), ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Update loads the stored preferences, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	p, _ := Load(path)
	fn(&p)
	return Save(path, p)
}

// resolve expands a leading ~ and makes path absolute.
func resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
