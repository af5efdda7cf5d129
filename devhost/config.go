package devhost

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-functions/errors"
)

// Config seeds a dev host. It is usually loaded from YAML:
//
//	environment:
//	  GREETING: hello
//	cache:
//	  user:1: '{"name":"arthur"}'
//	secrets:
//	  api-key: s3cr3t
//	credentials:
//	  - access_key_id: AKIDEXAMPLE
//	    secret_access_key: wJalrXUtnFEMI
//	tables:
//	  - name: users
//	    hash_key: id
//	functions: [worker]
//	token:
//	  endpoint: cache.example.com
//	  allow_super_user: true
type Config struct {
	Environment   map[string]string         `yaml:"environment"`
	Cache         map[string]string         `yaml:"cache"`
	Secrets       map[string]string         `yaml:"secrets"`
	Objects       map[string]string         `yaml:"objects"`
	Lambdas       map[string]LambdaResponse `yaml:"lambdas"`
	TokenMetadata *string                   `yaml:"token_metadata"`
	Token         TokenConfig               `yaml:"token"`
	Credentials   []Credential              `yaml:"credentials"`
	Tables        []Table                   `yaml:"tables"`
	Functions     []string                  `yaml:"functions"`
	Redis         []string                  `yaml:"redis"`
	SpawnLimit    int                       `yaml:"spawn_limit"`
	HTTPTimeout   time.Duration             `yaml:"http_timeout"`
}

// Credential is an access key pair the dev host accepts. With no
// credentials configured any non-empty pair is accepted.
type Credential struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// TokenConfig shapes disposable token vending. Limit caps the number of
// tokens vended; zero means unlimited.
type TokenConfig struct {
	Endpoint       string `yaml:"endpoint"`
	AllowSuperUser bool   `yaml:"allow_super_user"`
	Limit          int    `yaml:"limit"`
}

// Table declares a document table and its primary key.
type Table struct {
	Name     string `yaml:"name"`
	HashKey  string `yaml:"hash_key"`
	RangeKey string `yaml:"range_key"`
}

// LambdaResponse is a canned response for a lambda function.
type LambdaResponse struct {
	Payload    string `yaml:"payload"`
	StatusCode int32  `yaml:"status_code"`
}

// ParseConfig decodes YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Malformed(errors.PhaseDecode, "invalid dev host config", err)
	}
	for _, t := range cfg.Tables {
		if t.Name == "" || t.HashKey == "" {
			return nil, errors.InvalidInput(errors.PhaseDecode, "table %q needs a name and a hash_key", t.Name)
		}
	}
	return &cfg, nil
}

// LoadConfig reads and decodes a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindNotFound, err, "read dev host config")
	}
	return ParseConfig(data)
}
