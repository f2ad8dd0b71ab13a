package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	HistoryName       = "history"
	AppLogName        = "app.log"
	RCName            = "rc.gosh"
)

type Configuration struct {
	configFs afero.Fs
	// configurationDir is the directory the configuration was loaded
	// from, used when collaborators need real paths instead of handles.
	configurationDir string

	// Prompt is the PS1-style prompt template. \u, \h, \w and \$ are
	// substituted at display time.
	Prompt string `json:"prompt"`

	// AutoCd treats a lone directory path as a cd into it.
	AutoCd bool `json:"auto_cd"`

	// RaiseSubprocError surfaces nonzero exit statuses as shell errors
	// instead of silently updating $?.
	RaiseSubprocError bool `json:"raise_subproc_error"`

	// SuggestionLimit caps "did you mean" entries shown when a command
	// is not found. Zero disables suggestions.
	SuggestionLimit int `json:"suggestion_limit" validate:"gte=0"`

	HistorySize int `json:"history_size" validate:"gte=0"`

	// Env seeds environment variables on startup, layered over the
	// inherited process environment.
	Env map[string]string `json:"env"`

	// Aliases maps names to their expansions, split shell-style.
	Aliases map[string]string `json:"aliases"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

// HistoryPath returns the real path of the history file, for tools that
// take file names rather than handles.
func (c *Configuration) HistoryPath() string {
	if c.configurationDir == "" {
		return ""
	}
	return filepath.Join(c.configurationDir, HistoryName)
}

// OpenHistory opens the command history file for reading and appending.
func (c *Configuration) OpenHistory() (afero.File, error) {
	return c.fs().OpenFile(HistoryName, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0600)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenRC opens the startup script, if present.
func (c *Configuration) OpenRC() (afero.File, error) {
	return c.fs().Open(RCName)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
