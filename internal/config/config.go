package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	NarrativeURL    string        `mapstructure:"NARRATIVE_URL"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`
	VocabPath       string        `mapstructure:"VOCAB_PATH"`
	WatchDir        string        `mapstructure:"WATCH_DIR"`
	AnalysisCron    string        `mapstructure:"ANALYSIS_CRON"`
	Workers         int           `mapstructure:"WORKERS"`
	ReportBrand     string        `mapstructure:"REPORT_BRAND"`
	ReportFooter    string        `mapstructure:"REPORT_FOOTER"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "120s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("WORKERS", 0)
	v.SetDefault("ANALYSIS_CRON", "0 7 * * *")
	v.SetDefault("REPORT_BRAND", "EXPRESSGLASS")
	v.SetDefault("REPORT_FOOTER", "PoweringEG Platform 2.0 - a IA ao serviço da ExpressGlass")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
