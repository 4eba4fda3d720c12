package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const viewFile = "view.json"

// View is the browser state kept between sessions.
type View struct {
	// Columns maps column keys to visibility. Keys missing here keep their
	// registry default.
	Columns map[string]bool `json:"columns,omitempty"`
	// Sort is "key:asc" or "key:desc"; empty means unsorted.
	Sort string `json:"sort,omitempty"`
}

// Path returns the prefs file location under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jaskgrid", viewFile), nil
}

// SaveView writes v atomically.
func SaveView(path string, v View) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadView returns the zero View when path does not exist.
func LoadView(path string) (View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return View{}, nil
		}
		return View{}, err
	}
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return View{}, err
	}
	return v, nil
}
