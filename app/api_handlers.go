package app

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"example/aoe4-reviewer/app/models"
	"example/aoe4-reviewer/auth"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me echoes the verified token subject.
func Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject": claims.Subject,
		"name":    claims.Name,
		"scopes":  claims.Scopes,
	})
}

func fetchErrorStatus(err error) int {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNoGames):
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// APIGames proxies the player's recent games.
func (s *Server) APIGames(c *gin.Context) {
	playerID := c.Param("playerID")
	limit := s.cfg.AOE4World.RecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	resp, err := s.api.FetchRecentMatches(ctx, playerID, limit)
	if err != nil {
		log.Printf("api games player=%s: %v", playerID, err)
		c.JSON(fetchErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// APILastMatch returns the player's latest game reshaped for them.
func (s *Server) APILastMatch(c *gin.Context) {
	playerID := c.Param("playerID")

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	m, err := s.api.FetchLastMatch(ctx, playerID)
	if err != nil {
		log.Printf("api last match player=%s: %v", playerID, err)
		c.JSON(fetchErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, m, playerID)
}

// APIReshape reshapes a match record posted in the body.
func (s *Server) APIReshape(c *gin.Context) {
	m, ok := decodeBody(c)
	if !ok {
		return
	}
	s.respondView(c, m, c.Query("viewer"))
}

// APISavedList lists the data directory.
func (s *Server) APISavedList(c *gin.Context) {
	files, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// APISavedMatch reshapes one saved file.
func (s *Server) APISavedMatch(c *gin.Context) {
	m, err := s.store.Load(c.Param("filename"))
	if err != nil {
		c.JSON(loadErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, m, c.Query("viewer"))
}

// APISaveMatch persists a posted match record as-is, annotations included.
func (s *Server) APISaveMatch(c *gin.Context) {
	m, ok := decodeBody(c)
	if !ok {
		return
	}
	viewer := strings.TrimSpace(c.Query("viewer"))

	rec, err := s.SaveReview(c.Request.Context(), m, viewer)
	if err != nil {
		log.Printf("api save game_id=%d: %v", m.GameID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidMatchName) || errors.Is(err, ErrBadStartTime) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": rec.FilePath, "match_name": rec.MatchName})
}

// APIHistory lists the most recent saves from the index.
func (s *Server) APIHistory(c *gin.Context) {
	if s.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "save history is not configured"})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	rows, err := s.index.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("api history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if rows == nil {
		rows = []models.SavedReview{}
	}
	c.JSON(http.StatusOK, gin.H{"saves": rows})
}

func (s *Server) respondView(c *gin.Context, m *models.Match, viewerID string) {
	view, err := Reshape(m, strings.TrimSpace(viewerID), s.loc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func decodeBody(c *gin.Context) (*models.Match, bool) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return nil, false
	}
	m, err := DecodeMatch(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return m, true
}
