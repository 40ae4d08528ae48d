package server

import (
	"github.com/raysh454/rawdata/internal/app"
	"github.com/raysh454/rawdata/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address. Empty falls back to
	// AppConfig.Server.ListenAddr.
	ListenAddr string
	AppConfig  *app.Config
	// App, when set, is used instead of building one from AppConfig. The
	// caller keeps ownership and shuts it down.
	App    *app.Application
	Logger logging.Logger
}
