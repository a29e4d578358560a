// Package config resolves flowtag settings from .env files, the environment,
// an optional YAML config file and defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Backend names.
const (
	BackendAPI = "api"
	BackendDB  = "db"
)

// Keys understood by the config file and FLOWTAG_* environment variables.
const (
	KeyN8NURL       = "n8n_url"
	KeyAPIKey       = "api_key"
	KeyBackend      = "backend"
	KeyDatabaseDSN  = "database_dsn"
	KeyDeployLog    = "deploy_log"
	KeyWorkflowsDir = "workflows_dir"
	KeyPolicyFile   = "policy_file"
	KeyHTTPTimeout  = "http_timeout"
	KeySQLTimeout   = "sql_timeout"
	KeyBatchSize    = "batch_size"
)

// EnvPrefix namespaces flowtag's own environment variables.
const EnvPrefix = "FLOWTAG"

// Settings are the resolved connection and input parameters of a run.
type Settings struct {
	N8NURL       string        `mapstructure:"n8n_url" yaml:"n8n_url" json:"n8n_url"`
	APIKey       string        `mapstructure:"api_key" yaml:"-" json:"-"`
	Backend      string        `mapstructure:"backend" yaml:"backend" json:"backend"`
	DatabaseDSN  string        `mapstructure:"database_dsn" yaml:"database_dsn" json:"database_dsn"`
	DeployLog    string        `mapstructure:"deploy_log" yaml:"deploy_log" json:"deploy_log"`
	WorkflowsDir string        `mapstructure:"workflows_dir" yaml:"workflows_dir" json:"workflows_dir"`
	PolicyFile   string        `mapstructure:"policy_file" yaml:"policy_file" json:"policy_file"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout" yaml:"http_timeout" json:"http_timeout"`
	SQLTimeout   time.Duration `mapstructure:"sql_timeout" yaml:"sql_timeout" json:"sql_timeout"`
	BatchSize    int           `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size"`
}

// LoadEnvFiles loads .env then .env.local. Variables already set in the
// process environment are never overwritten; missing files are ignored.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// NewViper returns a viper instance with flowtag's defaults and environment
// bindings. configFile, when set, is read explicitly; otherwise .flowtag.yaml
// is searched in the home and working directories.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeyBackend, BackendAPI)
	v.SetDefault(KeyDeployLog, constants.DefaultDeployLog)
	v.SetDefault(KeyWorkflowsDir, constants.DefaultWorkflowsDir)
	v.SetDefault(KeyHTTPTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeySQLTimeout, constants.DefaultSQLTimeout)
	v.SetDefault(KeyBatchSize, constants.StatementBatchSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The n8n variables are shared with the rest of the tooling and carry no prefix.
	if err := v.BindEnv(KeyN8NURL, "FLOWTAG_N8N_URL", "N8N_LOCAL_URL", "N8N_URL"); err != nil {
		return nil, errors.NewConfigError("env", "bind "+KeyN8NURL, err)
	}
	if err := v.BindEnv(KeyAPIKey, "FLOWTAG_API_KEY", "N8N_API_KEY"); err != nil {
		return nil, errors.NewConfigError("env", "bind "+KeyAPIKey, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", "cannot read "+configFile, err)
		}
		return v, nil
	}

	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", "cannot read config", err)
		}
	}
	return v, nil
}

// FromViper builds Settings from v.
func FromViper(v *viper.Viper) *Settings {
	return &Settings{
		N8NURL:       strings.TrimRight(GetString(v, KeyN8NURL), "/"),
		APIKey:       GetString(v, KeyAPIKey),
		Backend:      strings.ToLower(GetString(v, KeyBackend)),
		DatabaseDSN:  GetString(v, KeyDatabaseDSN),
		DeployLog:    GetString(v, KeyDeployLog),
		WorkflowsDir: GetString(v, KeyWorkflowsDir),
		PolicyFile:   GetString(v, KeyPolicyFile),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		SQLTimeout:   v.GetDuration(KeySQLTimeout),
		BatchSize:    v.GetInt(KeyBatchSize),
	}
}

// Load is LoadEnvFiles, NewViper and FromViper in one call.
func Load(configFile string) (*Settings, *viper.Viper, error) {
	LoadEnvFiles()
	v, err := NewViper(configFile)
	if err != nil {
		return nil, nil, err
	}
	return FromViper(v), v, nil
}

// GetString returns a trimmed string value from v.
func GetString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// RequireAPI checks the parameters the REST API needs.
func (s *Settings) RequireAPI() error {
	if s.N8NURL == "" {
		return errors.NewConfigError("n8n", "N8N_URL or N8N_LOCAL_URL must be set", nil)
	}
	if s.APIKey == "" {
		return errors.NewConfigError("n8n", "N8N_API_KEY must be set", errors.ErrAPIKeyRequired)
	}
	return nil
}

// Validate checks that everything the selected backend needs is present.
// A failure here is fatal before any workflow is processed.
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendAPI:
		if err := s.RequireAPI(); err != nil {
			return err
		}
	case BackendDB:
	default:
		return errors.NewConfigError("backend", "unknown backend "+strings.TrimSpace(s.Backend)+" (want api or db)", nil)
	}

	if s.DeployLog == "" {
		return errors.NewConfigError("input", "deploy log path is empty", nil)
	}
	if s.WorkflowsDir == "" {
		return errors.NewConfigError("input", "workflows directory is empty", nil)
	}
	if s.HTTPTimeout < 0 || s.SQLTimeout < 0 {
		return errors.NewConfigError("timeouts", "timeouts must be non-negative", nil)
	}
	if s.BatchSize < 1 {
		return errors.NewConfigError("batch_size", "batch size must be at least 1", nil)
	}
	return nil
}
