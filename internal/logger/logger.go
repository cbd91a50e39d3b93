package logger

import (
	"go.uber.org/zap"

	"github.com/aliskhannn/certprep-bot/internal/config"
)

// New returns a production logger for the production environment and a development logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
