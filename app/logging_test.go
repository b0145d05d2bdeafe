package app

import (
	"log"
	"testing"

	"example/aoe4-reviewer/app/config"

	"github.com/gin-gonic/gin"
)

func TestConfigureLogging(t *testing.T) {
	prevFlags := log.Flags()
	t.Cleanup(func() {
		log.SetFlags(prevFlags)
		gin.SetMode(gin.TestMode)
	})

	ConfigureLogging(config.LogConfig{Level: "DEBUG", Style: "short"})
	if gin.Mode() != gin.DebugMode {
		t.Fatalf("gin mode = %s", gin.Mode())
	}
	if log.Flags()&log.Lshortfile == 0 {
		t.Fatal("expected file:line flag")
	}

	ConfigureLogging(config.LogConfig{})
	if gin.Mode() != gin.ReleaseMode || log.Flags() != log.LstdFlags {
		t.Fatalf("mode = %s flags = %d", gin.Mode(), log.Flags())
	}
}
