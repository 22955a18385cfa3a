package config

import "go.uber.org/zap"

// NewLogger returns a development logger for local runs and a JSON production logger otherwise.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
