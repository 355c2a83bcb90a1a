package handler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

const defaultPublic = "ftp"

// Configuration file format, JSON or YAML
type serveConfiguration = struct {
	Public           string    `json:"public" yaml:"public"`
	Listen           []string  `json:"listen" yaml:"listen"`
	DirectoryListing *bool     `json:"directoryListing" yaml:"directoryListing"`
	Unlisted         *[]string `json:"unlisted" yaml:"unlisted"`
	Symlinks         bool      `json:"symlinks" yaml:"symlinks"`
	Debug            bool      `json:"debug" yaml:"debug"`
	NoCompression    bool      `json:"noCompression" yaml:"noCompression"`
	Ssl              SslConfig `json:"ssl" yaml:"ssl"`
}

var validate = validator.New()

// LoadServeConfiguration reads configPath when it exists and fills in the
// defaults. A missing file is not an error.
func LoadServeConfiguration(configPath string) (Configuration, error) {
	config := Configuration{}
	data := serveConfiguration{}

	file, err := os.ReadFile(configPath)
	if err == nil {
		if err := unmarshalConfig(configPath, file, &data); err != nil {
			return config, errors.Wrapf(err, "parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return config, errors.Wrapf(err, "read %s", configPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config, errors.Wrap(err, "working directory")
	}
	config.Public = resolvePublic(cwd, data.Public)

	config.Listen = data.Listen
	if data.DirectoryListing != nil {
		config.NoDirectoryListing = !*data.DirectoryListing
	}
	if data.Unlisted != nil {
		config.Unlisted = *data.Unlisted
	}
	// Provide senible defaults for these
	if len(config.Unlisted) == 0 {
		config.Unlisted = append(config.Unlisted, ".DS_Store", ".git")
	}
	config.Symlinks = data.Symlinks
	config.Debug = data.Debug
	config.NoCompression = data.NoCompression
	config.Ssl = data.Ssl

	return config, nil
}

// ValidateConfiguration checks the struct tags on a finished configuration,
// after command line overrides have been applied.
func ValidateConfiguration(config Configuration) error {
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if (config.Ssl.KeyFile == "") != (config.Ssl.CertFile == "") {
		return errors.New("invalid configuration: ssl needs both keyFile and certFile")
	}
	return nil
}

func unmarshalConfig(name string, data []byte, out *serveConfiguration) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}

func resolvePublic(cwd, public string) string {
	if public == "" {
		public = defaultPublic
	}
	if filepath.IsAbs(public) {
		return filepath.Clean(public)
	}
	return filepath.Join(cwd, public)
}
