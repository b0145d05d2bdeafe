package app

import (
	"log"
	"strings"

	"example/aoe4-reviewer/app/config"

	"github.com/gin-gonic/gin"
)

// ConfigureLogging applies LOG_LEVEL and LOG_STYLE. LOG_LEVEL=debug puts gin
// in debug mode; LOG_STYLE=short adds file:line to every log line.
func ConfigureLogging(cfg config.LogConfig) {
	if strings.EqualFold(cfg.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	flags := log.LstdFlags
	if strings.EqualFold(cfg.Style, "short") {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)
}
