package app

import (
	"os"

	"parcel-delivery/internal/config"
	"parcel-delivery/internal/logx"
)

// NewLogger writes JSON logs to stdout at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel).With(logx.String("service", "parcel-delivery"))
}
