package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	output := strings.ToLower(v.GetString("output"))
	if v.GetBool("json") {
		output = "json"
	}
	switch output {
	case "table", "json", "yaml":
	default:
		return nil, fmt.Errorf("unsupported output format %q (use table, json or yaml)", output)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".treb-gov"),
		DAOName:        v.GetString("dao"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           output == "json",
		Output:         output,
		Timeout:        v.GetDuration("timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		ListenAddr:     v.GetString("listen"),
	}

	loadEnvFiles(projectRoot)

	// Secrets come from the environment only, after .env files are loaded
	cfg.PrivateKey = strings.TrimPrefix(os.Getenv("TREB_GOV_PRIVATE_KEY"), "0x")
	cfg.SafeAPIKey = os.Getenv("TREB_GOV_SAFE_API_KEY")

	file, err := loadGovFile(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg.Networks, err = resolveNetworks(file)
	if err != nil {
		return nil, err
	}

	cfg.DAOs, err = resolveDAOs(file, cfg.Networks)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find treb-gov.toml.
// Falls back to the working directory when no file is found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, GovFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".treb-gov"))

	// Set up environment variables
	v.SetEnvPrefix("TREB_GOV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "5m")
	v.SetDefault("poll_interval", "15s")
	v.SetDefault("listen", ":8080")
	v.SetDefault("output", "table")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		bind := func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				panic(err)
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
	}

	return v
}
