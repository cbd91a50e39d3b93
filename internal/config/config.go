package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aliskhannn/certprep-bot/internal/domain/entities"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownQuestionSource       = errors.New("unknown question source")
	ErrUnsupportedLanguage         = errors.New("unsupported anchor language")
	ErrUnknownCertification        = errors.New("default certification is not configured")
)

const (
	QuestionSourceFile     = "file"
	QuestionSourcePostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string                   `mapstructure:"env"`                   // current application environment (local, dev, production etc)
	TelegramAPIToken  string                   `mapstructure:"-"`                     // Telegram API token loaded from environment
	QuestionSource    string                   `mapstructure:"question_source"`       // where questions come from: "file" or "postgres"
	QuestionsJSONPath string                   `mapstructure:"questions_json_path"`   // path to the JSON question bank
	AnchorLanguage    string                   `mapstructure:"anchor_language"`       // language that fixes question order in a bilingual set
	DefaultTier       string                   `mapstructure:"default_tier"`          // question tier served to users
	PersistTimeout    time.Duration            `mapstructure:"persist_timeout"`       // timeout of a single background persistence call
	CacheTTL          time.Duration            `mapstructure:"cache_ttl"`             // how often loaded question sets are dropped
	DB                DB                       `mapstructure:"database"`              // database configuration section
	DefaultCert       string                   `mapstructure:"default_certification"` // certification used until a user picks one
	Certifications    map[string]Certification `mapstructure:"certifications"`        // exams the bot can run
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Certification contains exam parameters for a single certification.
type Certification struct {
	Name         string             `mapstructure:"name"`          // display name
	Weights      map[string]float64 `mapstructure:"weights"`       // domain weights, domain name → share of the score
	Duration     time.Duration      `mapstructure:"duration"`      // exam duration, 0 for untimed
	Limit        int                `mapstructure:"limit"`         // questions per exam
	PassingScore int                `mapstructure:"passing_score"` // minimum passing score, 100..1000
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("question_source", "QUESTION_SOURCE")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("question_source", QuestionSourceFile)
	v.SetDefault("questions_json_path", "assets/questions.json")
	v.SetDefault("anchor_language", "en")
	v.SetDefault("default_tier", "free")
	v.SetDefault("default_certification", "saa-c03")
	v.SetDefault("persist_timeout", "5s")
	v.SetDefault("cache_ttl", "10m")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("certifications", map[string]any{
		"saa-c03": map[string]any{
			"name": "AWS Certified Solutions Architect - Associate",
			"weights": map[string]float64{
				"secure":      0.30,
				"resilient":   0.26,
				"performance": 0.24,
				"cost":        0.20,
			},
			"duration":      "130m",
			"limit":         65,
			"passing_score": 720,
		},
	})
}

// decode unmarshals viper settings into Config and validates them.
func decode(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	switch cfg.QuestionSource {
	case QuestionSourceFile, QuestionSourcePostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionSource, cfg.QuestionSource)
	}

	lang, ok := entities.ParseLanguage(cfg.AnchorLanguage)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, cfg.AnchorLanguage)
	}
	cfg.AnchorLanguage = string(lang)

	cfg.DefaultCert = strings.ToLower(strings.TrimSpace(cfg.DefaultCert))
	if _, ok := cfg.Certifications[cfg.DefaultCert]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCertification, cfg.DefaultCert)
	}

	return &cfg, nil
}

// Certification returns the exam settings for a certification id.
func (c *Config) Certification(id string) (entities.Certification, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	cc, ok := c.Certifications[id]
	if !ok {
		return entities.Certification{}, false
	}

	return entities.Certification{
		ID:           id,
		Name:         cc.Name,
		Weights:      entities.NewDomainWeights(cc.Weights),
		Duration:     cc.Duration,
		Limit:        cc.Limit,
		PassingScore: cc.PassingScore,
	}, true
}

// CertificationIDs returns the configured certification ids in sorted order.
func (c *Config) CertificationIDs() []string {
	ids := make([]string, 0, len(c.Certifications))
	for id := range c.Certifications {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
