package conf

import (
	"github.com/sofi-fitness/studio-landing/internal/buildinfo"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Context carries what every command needs: settings loaded after flag
// parsing, the build metadata and the root logger.
type Context struct {
	Settings *Settings
	Build    buildinfo.Info
	Logger   logger.Logger
}

// NewContext returns a context with build metadata and a discarding logger.
// Settings and Logger are filled in once configuration is loaded.
func NewContext(build buildinfo.Info) *Context {
	return &Context{Build: build, Logger: logger.NewNopLogger()}
}

// LoggerConfig maps the logging settings to the logger configuration.
// Debug mode lowers the level to debug unless a lower level is set.
func (s *Settings) LoggerConfig() logger.Config {
	level := s.Logging.Level
	if s.Debug && (level == "" || level == "info" || level == "warn" || level == "error") {
		level = "debug"
	}
	return logger.Config{
		Level:        level,
		JSON:         s.Logging.JSON,
		Development:  !s.IsProduction() && s.Debug,
		ModuleLevels: s.Logging.ModuleLevels,
	}
}
