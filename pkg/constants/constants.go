package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	ServiceName = "playvenue_backend"
)
