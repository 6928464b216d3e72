package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	MediaDir    string `yaml:"media_dir"`
	TemplateDir string `yaml:"template_dir"`

	// EnforcePostOwnership gates the author check on post editing. Off by
	// default: any authenticated user may edit any post.
	EnforcePostOwnership bool `yaml:"enforce_post_ownership"`
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "yatube.db",
		MediaDir:    "media",
		TemplateDir: "web/templates",
	}
}

// Load reads the YAML file at path over the defaults, then applies env
// overrides. A missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}
