package structures

import "net/http"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	DaemonMode bool
	Strict     bool
}

type Route struct {
	Url     string
	Handler http.Handler
}
