package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"imgguard/pkg/logger"
	"imgguard/pkg/remotepattern"
	"imgguard/pkg/utils"
)

// ErrInvalidConfig wraps every configuration problem reported by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// AllowEnv holds extra URL-form patterns, comma separated.
const AllowEnv = "IMGGUARD_ALLOW"

func (c *Config) GetBaseUrl() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// Allowlist returns the compiled remote patterns. It is nil until Load succeeds.
func (c *Config) Allowlist() *remotepattern.Allowlist {
	return c.allowlist
}

// TrustedProxies returns the parsed security.trusted_proxies ranges.
func (c *Config) TrustedProxies() []*net.IPNet {
	return c.trustedProxies
}

// MaxBodyBytes is server.max_body_size in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return utils.SizeToBytes(c.Server.MaxBodySize, 64<<10)
}

// Load reads defaults, the optional config file, .env and IMGGUARD_* variables,
// then appends extraPatterns (URL-form, e.g. from --allow) to the configured
// remote patterns. Any invalid setting or pattern fails the whole load.
func Load(cfgFile string, extraPatterns []string) (*Config, error) {
	utils.LoadEnv()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("imgguard")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "imgguard"))
		}
	}

	v.SetEnvPrefix("IMGGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "IMGGUARD_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %w", ErrInvalidConfig, err)
		}
		logger.LogDebug("No config file found. Using environment variables and defaults.")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %w", ErrInvalidConfig, err)
	}
	cfg.File = v.ConfigFileUsed()

	extra := append(splitList(os.Getenv(AllowEnv)), extraPatterns...)
	for _, raw := range extra {
		p, err := remotepattern.ParsePattern(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: --allow/%s: %w", ErrInvalidConfig, AllowEnv, err)
		}
		cfg.Images.RemotePatterns = append(cfg.Images.RemotePatterns, p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Server.BaseURL = cfg.GetBaseUrl()

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Images
	v.SetDefault("images.remotePatterns", []map[string]interface{}{
		{
			"protocol": "https",
			"hostname": "i.seadn.io",
			"port":     "",
			"pathname": "/**",
		},
	})

	// Server
	v.SetDefault("server.port", 9980)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.max_body_size", "64KB")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Security & Limits
	v.SetDefault("security.cors_origins", []string{})
	v.SetDefault("security.trusted_proxies", []string{})
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)

	// Guarded fetch client
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.host_rate_limit", 0)
	v.SetDefault("fetch.host_burst", 10)
	v.SetDefault("fetch.user_agent", "imgguard")

	// Logging & Output
	v.SetDefault("logging.level", "info")
	v.SetDefault("output.colors", true)
	v.SetDefault("output.banner", true)
}

// Validate checks the decoded settings and compiles the allowlist.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: fieldMessages(verrs)}
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := utils.ParseSize(c.Server.MaxBodySize); err != nil {
		return fmt.Errorf("%w: server.max_body_size: %w", ErrInvalidConfig, err)
	}

	proxies, err := utils.ParseTrustedProxies(c.Security.TrustedProxies)
	if err != nil {
		return fmt.Errorf("%w: security.trusted_proxies: %w", ErrInvalidConfig, err)
	}
	c.trustedProxies = proxies

	allow, err := remotepattern.New(c.Images.RemotePatterns)
	if err != nil {
		return fmt.Errorf("%w: images.%w", ErrInvalidConfig, err)
	}
	c.allowlist = allow
	c.Images.RemotePatterns = allow.Patterns()

	if allow.Len() == 0 {
		logger.LogWarn("images.remotePatterns is empty: every remote image will be denied")
	}
	for i, p := range c.Images.RemotePatterns {
		if p.Pathname == "" {
			logger.LogWarn("images.remotePatterns[%d] (%s) has no pathname and matches nothing", i, p.Hostname)
		}
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.Window == 0 {
		return fmt.Errorf("%w: security.rate_limit.window must be set when rate limiting is enabled", ErrInvalidConfig)
	}
	return nil
}

// ValidationError lists every field that failed schema validation, keyed by
// its dotted config path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return validate
}

func fieldMessages(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		out[key] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be numeric"
	case "cidr|ip":
		return fmt.Sprintf("must be a CIDR range or an IP, got %q", fmt.Sprint(fe.Value()))
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
