// Package config holds the settings of a generation run and their
// validation.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/spf13/viper"

	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/synth"
)

// EnvPrefix prefixes the environment variables Load consults, e.g.
// APIGEN_RETRY_DELAY_SECONDS.
const EnvPrefix = "APIGEN"

// Config is the configuration of one generation run.
type Config struct {
	// Language is the target when Languages is empty.
	Language  string   `mapstructure:"language" schema:"language" validate:"required,oneof=csharp typescript go cli"`
	Languages []string `mapstructure:"languages" schema:"languages" validate:"dive,oneof=csharp typescript go cli"`

	// Document is the path of the IR document.
	Document string `mapstructure:"document" schema:"document"`

	ClientNamespaceName string `mapstructure:"client_namespace_name" schema:"client_namespace_name" validate:"required"`
	ClientClassName     string `mapstructure:"client_class_name" schema:"client_class_name" validate:"required"`
	UsesBackingStore    bool   `mapstructure:"uses_backing_store" schema:"uses_backing_store"`

	// WordSeparator is the casing of command and option names.
	WordSeparator string `mapstructure:"word_separator" schema:"word_separator" validate:"oneof=kebab snake"`

	OutputPath  string `mapstructure:"output_path" schema:"output_path" validate:"required"`
	CleanOutput bool   `mapstructure:"clean_output" schema:"clean_output"`

	// MaxDegreeOfParallelism bounds concurrently generated targets. -1
	// runs one worker per target.
	MaxDegreeOfParallelism int `mapstructure:"max_degree_of_parallelism" schema:"max_degree_of_parallelism" validate:"gte=-1"`

	// GoImportPath is the import path of the generated Go root package.
	GoImportPath string `mapstructure:"go_import_path" schema:"go_import_path"`

	Serializers   []string `mapstructure:"serializers" schema:"serializers"`
	Deserializers []string `mapstructure:"deserializers" schema:"deserializers"`

	Retry    Retry    `mapstructure:"retry" schema:"retry"`
	Redirect Redirect `mapstructure:"redirect" schema:"redirect"`
}

// Retry holds default retry handler options.
type Retry struct {
	DelaySeconds int `mapstructure:"delay_seconds" schema:"delay_seconds" validate:"gte=0,lte=180"`
	MaxRetries   int `mapstructure:"max_retries" schema:"max_retries" validate:"gte=0,lte=10"`
}

// Redirect holds default redirect handler options.
type Redirect struct {
	MaxRedirects int `mapstructure:"max_redirects" schema:"max_redirects" validate:"gte=0,lte=20"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Language:               convention.CSharp,
		ClientNamespaceName:    "ApiSdk",
		ClientClassName:        "ApiClient",
		WordSeparator:          "kebab",
		OutputPath:             "./output",
		MaxDegreeOfParallelism: -1,
	}
}

// New validates c and returns it.
func New(c Config) (*Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Targets returns the requested languages without duplicates, in request
// order.
func (c *Config) Targets() []string {
	if len(c.Languages) == 0 {
		return []string{c.Language}
	}
	seen := make(map[string]bool)
	var out []string
	for _, l := range c.Languages {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// SynthOptions returns the synthesis options of the run.
func (c *Config) SynthOptions() synth.Options {
	sep := convention.CaseKebab
	if c.WordSeparator == "snake" {
		sep = convention.CaseSnake
	}
	return synth.Options{
		UsesBackingStore: c.UsesBackingStore,
		Serializers:      c.Serializers,
		Deserializers:    c.Deserializers,
		Retry:            synth.RetryDefaults{DelaySeconds: c.Retry.DelaySeconds, MaxRetries: c.Retry.MaxRetries},
		Redirect:         synth.RedirectDefaults{MaxRedirects: c.Redirect.MaxRedirects},
		WordSeparator:    sep,
	}
}

// SetDefaults registers the defaults and every known key with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("language", d.Language)
	v.SetDefault("languages", []string{})
	v.SetDefault("document", "")
	v.SetDefault("client_namespace_name", d.ClientNamespaceName)
	v.SetDefault("client_class_name", d.ClientClassName)
	v.SetDefault("uses_backing_store", false)
	v.SetDefault("word_separator", d.WordSeparator)
	v.SetDefault("output_path", d.OutputPath)
	v.SetDefault("clean_output", false)
	v.SetDefault("max_degree_of_parallelism", d.MaxDegreeOfParallelism)
	v.SetDefault("go_import_path", "")
	v.SetDefault("serializers", []string{})
	v.SetDefault("deserializers", []string{})
	v.SetDefault("retry.delay_seconds", 0)
	v.SetDefault("retry.max_retries", 0)
	v.SetDefault("redirect.max_redirects", 0)
}

// Load reads the optional config file, then APIGEN_* environment
// variables, then key=value overrides, and validates the result.
func Load(file string, overrides ...string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := ApplyOverrides(&c, overrides); err != nil {
		return nil, err
	}
	return New(c)
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// ApplyOverrides sets fields from key=value pairs. Keys are the snake case
// field names; nested fields are dotted, as in retry.max_retries. Repeated
// keys build lists.
func ApplyOverrides(c *Config, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	values := url.Values{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return &Error{Kind: InvalidValue, Field: o, Message: "override must have the form key=value"}
		}
		values.Add(key, value)
	}
	if err := decoder.Decode(c, values); err != nil {
		return errors.Wrap(err, "apply overrides")
	}
	return nil
}

// ErrorKind classifies configuration errors.
type ErrorKind string

const (
	MaxLimitExceeded     ErrorKind = "MaxLimitExceeded"
	MinExpectationNotMet ErrorKind = "MinExpectationNotMet"
	InvalidValue         ErrorKind = "InvalidValue"
)

// Error is a configuration value outside its accepted range.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Kind)
}

var validate = validator.New()

// Validate checks every bound. A single violation is returned as *Error;
// several are joined.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate config")
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fieldError(fe))
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) *Error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "lte", "max":
		return &Error{Kind: MaxLimitExceeded, Field: field, Message: "must be at most " + fe.Param()}
	case "gte", "min":
		return &Error{Kind: MinExpectationNotMet, Field: field, Message: "must be at least " + fe.Param()}
	case "required":
		return &Error{Kind: InvalidValue, Field: field, Message: "required"}
	case "oneof":
		return &Error{Kind: InvalidValue, Field: field, Message: "must be one of [" + fe.Param() + "]"}
	default:
		return &Error{Kind: InvalidValue, Field: field, Message: "failed " + fe.Tag() + " validation"}
	}
}
