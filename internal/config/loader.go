package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "CONCEPTDB"

// loadOptions collects the inputs of one Load call.
type loadOptions struct {
	path      string
	overrides map[string]interface{}
}

// Option customises Load.
type Option func(*loadOptions)

// WithConfigPath reads the YAML file at path.  An empty path is ignored.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) { o.path = path }
}

// WithOverrides sets keys (dotted, e.g. "import.batch_size") that take
// precedence over the file and the environment.  Command-line flags end up
// here.
func WithOverrides(overrides map[string]interface{}) Option {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]interface{}, len(overrides))
		}
		for k, v := range overrides {
			o.overrides[k] = v
		}
	}
}

// newViper builds a Viper instance with YAML file type, the CONCEPTDB_ env
// prefix and a "." -> "_" key replacer so that "neo4j.uri" resolves to
// CONCEPTDB_NEO4J_URI.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v, reflect.TypeOf(Config{}), "")
	return v
}

// bindEnvKeys registers every mapstructure key of t with v.  Unmarshal only
// consults the environment for keys viper already knows about.
func bindEnvKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() == t.PkgPath() {
			bindEnvKeys(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load merges the optional YAML file, CONCEPTDB_* environment variables and
// explicit overrides, applies defaults and validates the result.
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()
	if o.path != "" {
		v.SetConfigFile(o.path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation,
				fmt.Sprintf("config: failed to read config file %q", o.path))
		}
	}
	for k, val := range o.overrides {
		v.Set(k, val)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromFile is Load(WithConfigPath(path)).
func LoadFromFile(path string) (*Config, error) {
	return Load(WithConfigPath(path))
}

// LoadFromEnv builds a Config from CONCEPTDB_* environment variables only.
//
//	CONCEPTDB_<SECTION>_<FIELD>   e.g.  CONCEPTDB_IMPORT_GENE_INFO_PATH
func LoadFromEnv() (*Config, error) {
	return Load()
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "config: failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//Personal.AI order the ending
