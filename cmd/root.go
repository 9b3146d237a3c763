package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/headhunter"
)

const (
	app = "hh-interviewer"
)

type Config struct {
	Catalog    string                `mapstructure:"catalog"`
	ReportDir  string                `mapstructure:"report-dir"`
	Thresholds assessment.Thresholds `mapstructure:"thresholds"`
	Questions  *QuestionsConfig      `mapstructure:"questions"`
	HeadHunter *HeadHunterConfig     `mapstructure:"headhunter"`
	Database   *DatabaseConfig       `mapstructure:"database"`
	Server     *ServerConfig         `mapstructure:"server"`
}

type QuestionsConfig struct {
	MaxLogLength int           `mapstructure:"max-log-length"`
	Remote       *RemoteConfig `mapstructure:"remote"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type RemoteConfig struct {
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type GeminiConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type HeadHunterConfig struct {
	TokenFile string                   `mapstructure:"token-file"`
	UserAgent string                   `mapstructure:"user-agent"`
	Search    *headhunter.SearchParams `mapstructure:"search"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-interviewer screens a candidate against a job and runs a short scored interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"questions.remote.api-key-file": "QUESTIONS_API_KEY_FILE",
		"questions.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"database.dsn":                  "DATABASE_DSN",
		"headhunter.token-file":         "HH_TOKEN_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("catalog", "c", "", "job catalog file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	// Values from .env only fill variables that are not set yet.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	// Config needed only for run and serve commands.
	if runCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config is fine, everything has a default or a flag.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	config.Thresholds = config.Thresholds.WithDefaults()

	return config, nil
}
