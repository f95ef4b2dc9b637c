package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mpcereform/internal/sources"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type ProjectConfig struct {
	Project      string             `yaml:"project"`
	Version      int                `yaml:"version"`
	Database     DatabaseConfig     `yaml:"database"`
	Spreadsheets SpreadsheetsConfig `yaml:"spreadsheets"`
	Neo4j        Neo4jConfig        `yaml:"neo4j"`
}

// DatabaseConfig locates the legacy and target databases. With postgres
// both are schemas reached through DSN; with sqlite the DSN opens a scratch
// database and SourcePath and TargetPath are attached to it.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	SourcePath string `yaml:"source_path"`
	TargetPath string `yaml:"target_path"`
}

type SpreadsheetsConfig struct {
	Dir   string        `yaml:"dir"`
	Files sources.Files `yaml:"files"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Overrides are read from the environment after the file, so secrets can
// stay out of mpcereform.yaml.
type Overrides struct {
	DatabaseDSN      string `env:"MPCE_DATABASE_DSN"`
	DatabasePassword string `env:"MPCE_DATABASE_PASSWORD"`
	SpreadsheetsDir  string `env:"MPCE_SPREADSHEETS_DIR"`
	Neo4jPassword    string `env:"MPCE_NEO4J_PASSWORD"`
}

// LoadProjectConfig reads the YAML file at path, loads a .env file from the
// same directory when present and applies environment overrides.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading project config")
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "loading project config")
	}

	if err := LoadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, errors.Wrap(err, "loading project config")
	}
	var overrides Overrides
	if err := env.Parse(&overrides); err != nil {
		return nil, errors.Wrap(err, "loading project config")
	}
	cfg.apply(overrides)
	cfg.applyDefaults()

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "loading project config")
	}

	return &cfg, nil
}

// LoadEnv loads the dotenv files that exist. Variables already set in the
// environment win.
func LoadEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *ProjectConfig) apply(o Overrides) {
	if o.DatabaseDSN != "" {
		c.Database.DSN = o.DatabaseDSN
	}
	if o.DatabasePassword != "" {
		c.Database.Password = o.DatabasePassword
	}
	if o.SpreadsheetsDir != "" {
		c.Spreadsheets.Dir = o.SpreadsheetsDir
	}
	if o.Neo4jPassword != "" {
		c.Neo4j.Password = o.Neo4jPassword
	}
}

func (c *ProjectConfig) applyDefaults() {
	if c.Database.Driver == "" {
		if strings.HasPrefix(c.Database.DSN, "sqlite://") {
			c.Database.Driver = DriverSQLite
		} else {
			c.Database.Driver = DriverPostgres
		}
	}
	defaults := sources.DefaultFiles()
	files := &c.Spreadsheets.Files
	if files.AuthorPerson == "" {
		files.AuthorPerson = defaults.AuthorPerson
	}
	if files.PermissionSimple == "" {
		files.PermissionSimple = defaults.PermissionSimple
	}
	if files.Consignments == "" {
		files.Consignments = defaults.Consignments
	}
	if files.ClientsWithoutPersonCodes == "" {
		files.ClientsWithoutPersonCodes = defaults.ClientsWithoutPersonCodes
	}
	if c.Neo4j.Database == "" {
		c.Neo4j.Database = "neo4j"
	}
}

// ConnString returns the DSN with the configured password set on its user
// info. SQLite DSNs are returned unchanged.
func (d DatabaseConfig) ConnString() (string, error) {
	if d.Driver != DriverPostgres || d.Password == "" {
		return d.DSN, nil
	}
	u, err := url.Parse(d.DSN)
	if err != nil {
		return "", errors.Wrap(err, "parsing database dsn")
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, d.Password)
	return u.String(), nil
}

// Workbooks returns the spreadsheet reader for this project.
func (c *ProjectConfig) Workbooks() *sources.Workbooks {
	return &sources.Workbooks{Dir: c.Spreadsheets.Dir, Files: c.Spreadsheets.Files}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return errors.New("project name is required")
	}
	if cfg.Version != 1 {
		return errors.Newf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database dsn is required")
	}
	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.SourcePath != "" || cfg.Database.TargetPath != "" {
			return errors.New("database source_path and target_path apply to sqlite only")
		}
	case DriverSQLite:
		if !strings.HasPrefix(cfg.Database.DSN, "sqlite://") {
			return errors.New("sqlite dsn must start with sqlite://")
		}
	default:
		return errors.Newf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Spreadsheets.Dir) == "" {
		return errors.New("spreadsheets dir is required")
	}
	return nil
}
