package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"apiKey"`
	} `yaml:"server"`

	Storage struct {
		ProjectsDir string `yaml:"projectsDir"`
		ReportsDir  string `yaml:"reportsDir"`
	} `yaml:"storage"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	SMTP struct {
		Host       string              `yaml:"host"`
		Port       int                 `yaml:"port"`
		Username   string              `yaml:"username"`
		Password   string              `yaml:"password"`
		From       string              `yaml:"from"`
		Recipients []string            `yaml:"recipients"`
		PerProject map[string][]string `yaml:"perProject"`
	} `yaml:"smtp"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Portal struct {
		LoginURL string `yaml:"loginURL"`
		ListURL  string `yaml:"listURL"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		MaxPages int    `yaml:"maxPages"`
	} `yaml:"portal"`

	Style struct {
		StylesheetPath string             `yaml:"stylesheetPath"`
		LogoPath       string             `yaml:"logoPath"`
		BackgroundPath string             `yaml:"backgroundPath"`
		Palettes       map[string]Palette `yaml:"palettes"`
	} `yaml:"style"`
}

// Palette is the color set injected into the report template.
type Palette struct {
	Primary    string `yaml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" json:"secondary"`
	Accent     string `yaml:"accent" json:"accent"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
}

// Load reads the yaml config file and overlays secrets from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if cfg.Storage.ProjectsDir == "" {
		cfg.Storage.ProjectsDir = "data/projects"
	}
	if cfg.Storage.ReportsDir == "" {
		cfg.Storage.ReportsDir = "data/reports"
	}
	if cfg.Portal.MaxPages <= 0 {
		cfg.Portal.MaxPages = 10
	}
	return &cfg, nil
}

// applyEnv overlays secrets so they never have to live in the yaml file.
// Read once at process start, not re-validated per call.
func (c *Config) applyEnv() {
	if v := os.Getenv("API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("PORTAL_PASSWORD"); v != "" {
		c.Portal.Password = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

// Helper to build the MySQL DSN
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper to build the Postgres DSN
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// RecipientsFor resolves mail recipients for a project, falling back to the
// default list when no per-project override exists.
func (c *Config) RecipientsFor(project string) []string {
	if rs, ok := c.SMTP.PerProject[project]; ok && len(rs) > 0 {
		return rs
	}
	return c.SMTP.Recipients
}
