// Package config loads remix settings with viper. Values come, in rising
// precedence, from built-in defaults, a remix.config.{toml,json,yaml} file,
// REMIX_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file name without extension.
	FileName = "remix.config"
	// AppDirName is the directory under $XDG_CONFIG_HOME searched for FileName.
	AppDirName = "remix"
	// EnvPrefix prefixes environment overrides, e.g. REMIX_MAX_FILE_SIZE.
	EnvPrefix = "REMIX"

	DefaultOutputPath  = "./remix-output.md"
	DefaultFormat      = "md"
	DefaultMaxFileSize = 100000
	DefaultTokenizer   = "tiktoken"
)

// Formats lists the accepted values of output.format.
var Formats = []string{"md", "markdown", "json", "txt", "text", "pdf"}

// ErrConfigExists is returned by Init when the target file is already there.
var ErrConfigExists = errors.New("config file already exists")

// Config is the full set of settings for a packing run.
type Config struct {
	Include       []string       `mapstructure:"include"`
	Ignore        IgnoreConfig   `mapstructure:"ignore"`
	MaxFileSize   uint64         `mapstructure:"max_file_size"`
	Compress      bool           `mapstructure:"compress"`
	IncludeBinary bool           `mapstructure:"include_binary"`
	Security      SecurityConfig `mapstructure:"security"`
	Output        OutputConfig   `mapstructure:"output"`
	Instruction   string         `mapstructure:"instruction"`
	Threads       int            `mapstructure:"threads"`
	Tokens        TokensConfig   `mapstructure:"tokens"`
	LanguagesFile string         `mapstructure:"languages_file"`
}

type IgnoreConfig struct {
	UseGitignore       bool     `mapstructure:"use_gitignore"`
	UseGlobalGitignore bool     `mapstructure:"use_global_gitignore"`
	UseDefaultPatterns bool     `mapstructure:"use_default_patterns"`
	UseMixignore       bool     `mapstructure:"use_mixignore"`
	CustomPatterns     []string `mapstructure:"custom_patterns"`
}

type SecurityConfig struct {
	EnableSecurityCheck bool `mapstructure:"enable_security_check"`
}

type OutputConfig struct {
	Format              string `mapstructure:"format"`
	Path                string `mapstructure:"path"`
	OpenFile            bool   `mapstructure:"open_file"`
	InstructionFilePath string `mapstructure:"instruction_file_path"`
	RemoveComments      bool   `mapstructure:"remove_comments"`
}

// TokensConfig selects the token counter. Tokenizer is "tiktoken" or
// "huggingface"; Model and File are tokenizer specific.
type TokensConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Tokenizer string `mapstructure:"tokenizer"`
	Model     string `mapstructure:"model"`
	File      string `mapstructure:"file"`
}

// DefaultCustomPatterns keeps lockfiles, virtualenvs, VCS metadata and build
// output out of the pack.
var DefaultCustomPatterns = []string{
	"node_modules/",
	"package-lock.json",
	"**/package-lock.json",
	"**/node_modules/",
	"**/bun.lockb",
	"bun.lockb",
	"bun.lock",
	".conda/",
	"**/.conda/",
	".venv/",
	"**/.venv/",
	".mamba/",
	"**/.mamba/",
	".pyenv/",
	"**/.pyenv/",
	".git/",
	"**/.git/",
	".gitignore",
	"**/.gitignore",
	".gitattributes",
	"**/.gitattributes",
	".github/",
	"**/.github/",
	".gitmodules",
	"**/.gitmodules",
	".gitkeep",
	"**/.gitkeep",
	"target/",
	"**/target/",
	"dist/",
	"**/dist/",
	"build/",
	"**/build/",
	"**/*.log",
	"**/Cargo.lock",
	"**/.env",
	"**/*.exe",
	"**/*.o",
	"**/*.so",
	"**/*.dylib",
	"**/*.dll",
	"**/*.lib",
	"**/*.a",
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Ignore: IgnoreConfig{
			UseGitignore:       true,
			UseGlobalGitignore: true,
			UseDefaultPatterns: true,
			UseMixignore:       true,
			CustomPatterns:     append([]string(nil), DefaultCustomPatterns...),
		},
		MaxFileSize: DefaultMaxFileSize,
		Security: SecurityConfig{
			EnableSecurityCheck: true,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
			Path:   DefaultOutputPath,
		},
		Tokens: TokensConfig{
			Enabled:   true,
			Tokenizer: DefaultTokenizer,
		},
	}
}

// SetDefaults registers every key of Default on v so that environment
// overrides and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("include", d.Include)
	v.SetDefault("ignore.use_gitignore", d.Ignore.UseGitignore)
	v.SetDefault("ignore.use_global_gitignore", d.Ignore.UseGlobalGitignore)
	v.SetDefault("ignore.use_default_patterns", d.Ignore.UseDefaultPatterns)
	v.SetDefault("ignore.use_mixignore", d.Ignore.UseMixignore)
	v.SetDefault("ignore.custom_patterns", d.Ignore.CustomPatterns)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("compress", d.Compress)
	v.SetDefault("include_binary", d.IncludeBinary)
	v.SetDefault("security.enable_security_check", d.Security.EnableSecurityCheck)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.open_file", d.Output.OpenFile)
	v.SetDefault("output.instruction_file_path", d.Output.InstructionFilePath)
	v.SetDefault("output.remove_comments", d.Output.RemoveComments)
	v.SetDefault("instruction", d.Instruction)
	v.SetDefault("threads", d.Threads)
	v.SetDefault("tokens.enabled", d.Tokens.Enabled)
	v.SetDefault("tokens.tokenizer", d.Tokens.Tokenizer)
	v.SetDefault("tokens.model", d.Tokens.Model)
	v.SetDefault("tokens.file", d.Tokens.File)
	v.SetDefault("languages_file", d.LanguagesFile)
}

// SearchPaths returns the directories searched for FileName, in order.
func SearchPaths() []string {
	return []string{".", filepath.Join(xdg.ConfigHome, AppDirName)}
}

// ReadIn points v at the config file and environment and reads the file.
// An explicit cfgFile must exist; otherwise a missing file is not an error.
// It returns the path of the file read, or "" when none was found.
func ReadIn(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("error reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Unmarshal cannot.
func (c *Config) Validate() error {
	format := strings.ToLower(strings.TrimSpace(c.Output.Format))
	if !validFormat(format) {
		return fmt.Errorf("invalid output format %q (expected one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}
	c.Output.Format = format

	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}

	switch strings.ToLower(c.Tokens.Tokenizer) {
	case "", "tiktoken", "huggingface":
	default:
		return fmt.Errorf("unsupported tokenizer %q (use tiktoken or huggingface)", c.Tokens.Tokenizer)
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Init writes a config file holding the defaults to dir. It refuses to
// overwrite an existing file and returns the path written.
func Init(dir string) (string, error) {
	target := filepath.Join(dir, FileName+".toml")
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, target)
	}

	v := viper.New()
	SetDefaults(v)
	if err := v.SafeWriteConfigAs(target); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, target)
		}
		return "", fmt.Errorf("error writing config file %s: %w", target, err)
	}
	return target, nil
}
