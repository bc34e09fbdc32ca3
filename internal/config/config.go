// Package config holds the command line and environment configuration
// for the signer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default input/output paths.
	DefaultInputPDF       = "input.pdf"
	DefaultEntityFile     = "entity.txt"
	DefaultSignatureImage = "signature.jpg"
	DefaultOutputPath     = "signed_output.pdf"

	// DefaultFlattenScale is the rasterization scale applied when
	// flattening the signed document.
	DefaultFlattenScale = 2.0

	DefaultLogLevel = "info"
)

// Config holds all configuration for one signing run.
type Config struct {
	// Input files
	InputPDF       string
	EntityFile     string
	SignatureImage string

	// Output
	OutputPath string

	// Processing
	FlattenScale float64

	// Application
	LogLevel string
	Version  string
}

// DefaultConfig returns a configuration with the conventional file names.
func DefaultConfig() *Config {
	return &Config{
		InputPDF:       DefaultInputPDF,
		EntityFile:     DefaultEntityFile,
		SignatureImage: DefaultSignatureImage,
		OutputPath:     DefaultOutputPath,
		FlattenScale:   DefaultFlattenScale,
		LogLevel:       DefaultLogLevel,
		Version:        "1.0.0",
	}
}

// LoadFromFlags parses command line flags and the environment and
// returns a validated configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and
// defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("APS")
	viper.AutomaticEnv()

	viper.SetDefault("input", cfg.InputPDF)
	viper.SetDefault("entity", cfg.EntityFile)
	viper.SetDefault("signature", cfg.SignatureImage)
	viper.SetDefault("output", cfg.OutputPath)
	viper.SetDefault("scale", cfg.FlattenScale)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("input", cfg.InputPDF, "Path of the PDF document to sign")
	pflag.String("entity", cfg.EntityFile, "Path of the key=value entity data file")
	pflag.String("signature", cfg.SignatureImage, "Path of the signature image (PNG or JPEG)")
	pflag.String("output", cfg.OutputPath, "Path of the signed output PDF")
	pflag.Float64("scale", cfg.FlattenScale, "Rasterization scale used when flattening")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	_ = viper.BindPFlag("input", pflag.Lookup("input"))
	_ = viper.BindPFlag("entity", pflag.Lookup("entity"))
	_ = viper.BindPFlag("signature", pflag.Lookup("signature"))
	_ = viper.BindPFlag("output", pflag.Lookup("output"))
	_ = viper.BindPFlag("scale", pflag.Lookup("scale"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nauto-pdf-signer - fills and signs a PDF document, then flattens it\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                      "+
			"# conventional file names in the current directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input=nda.pdf --output=nda-signed.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  APS_INPUT      Input PDF path\n")
		fmt.Fprintf(os.Stderr, "  APS_ENTITY     Entity data file path\n")
		fmt.Fprintf(os.Stderr, "  APS_SIGNATURE  Signature image path\n")
		fmt.Fprintf(os.Stderr, "  APS_OUTPUT     Output PDF path\n")
		fmt.Fprintf(os.Stderr, "  APS_SCALE      Flatten scale\n")
		fmt.Fprintf(os.Stderr, "  APS_LOGLEVEL   Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.InputPDF = viper.GetString("input")
	cfg.EntityFile = viper.GetString("entity")
	cfg.SignatureImage = viper.GetString("signature")
	cfg.OutputPath = viper.GetString("output")
	cfg.FlattenScale = viper.GetFloat64("scale")
	cfg.LogLevel = viper.GetString("loglevel")
}

// MissingFilesError reports every required input file that does not
// exist, so the user sees the whole list at once.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("missing required files: %s", strings.Join(e.Paths, ", "))
}

// Validate checks the configuration. All required input files are
// checked before reporting, so nothing starts with any of them missing.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	if c.FlattenScale <= 0 {
		return errors.New("flatten scale must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	var missing []string
	for _, path := range []string{c.InputPDF, c.EntityFile, c.SignatureImage} {
		if path == "" {
			return errors.New("input, entity and signature paths cannot be empty")
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &MissingFilesError{Paths: missing}
	}
	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Input: %s, Entity: %s, Signature: %s, Output: %s, Scale: %.1f, LogLevel: %s}",
		c.InputPDF, c.EntityFile, c.SignatureImage, c.OutputPath, c.FlattenScale, c.LogLevel)
}
