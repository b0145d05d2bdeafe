package app

import (
	"time"

	"example/aoe4-reviewer/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// WriteScope is required on tokens that save matches when auth is on.
const WriteScope = "reviews:write"

// NewRouter wires the page and JSON routes. A nil verifier leaves the write
// routes open; it is only acceptable when auth was never configured.
func NewRouter(s *Server, verifier *auth.Verifier) (*gin.Engine, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	origins := s.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = maxUploadBytes
	if s.cfg.Server.AssetsDir != "" {
		router.Static("/assets", s.cfg.Server.AssetsDir)
	}

	router.GET("/health", Health)
	router.GET("/", s.Index)
	router.POST("/last-match", s.LastMatch)
	router.POST("/recent-matches", s.RecentMatches)
	router.GET("/recent-matches/:index", s.RecentMatch)
	router.GET("/saved/:filename", s.SavedMatch)
	router.POST("/upload", s.Upload)
	router.POST("/download", s.DownloadMatch)

	api := router.Group("/api")
	api.GET("/players/:playerID/games", s.APIGames)
	api.GET("/players/:playerID/last-match", s.APILastMatch)
	api.POST("/reshape", s.APIReshape)
	api.GET("/saved", s.APISavedList)
	api.GET("/saved/:filename", s.APISavedMatch)
	api.GET("/history", s.APIHistory)

	writes := router.Group("/")
	if verifier != nil || auth.AuthDisabled() {
		writes.Use(auth.Middleware(verifier, auth.Options{
			RequireScopes: []string{WriteScope},
			Disabled:      auth.AuthDisabled(),
		}))
		writes.GET("/api/me", Me)
	}
	writes.POST("/save", s.SaveMatch)
	writes.POST("/api/saved", s.APISaveMatch)

	return router, nil
}
