package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Initialize writes a fresh configuration directory at path. Existing
// files are never overwritten. Progress is reported to w.
func Initialize(path string, w io.Writer) (*Configuration, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(path, ConfigurationName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintf(w, "Creating %s\n", configPath)
		if err := os.WriteFile(configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintf(w, "Keeping existing %s\n", configPath)
	}

	for _, name := range []string{HistoryName, RCName} {
		p := filepath.Join(path, name)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			fmt.Fprintf(w, "Creating %s\n", p)
			if err := os.WriteFile(p, nil, 0600); err != nil {
				return nil, err
			}
		}
	}

	return Load(path)
}
