package app

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example/aoe4-reviewer/app/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie  = "aoe4_review_session"
	fetchTimeout   = 25 * time.Second
	maxUploadBytes = 5 << 20

	msgNoGames    = "No games found"
	msgBadUpload  = "There was an error processing this file."
	msgNoMatch    = "No match loaded. Fetch or open a match first."
	msgNeedPlayer = "Enter a player id."
)

// loadSession returns the caller's session, starting a fresh one when the
// cookie is missing, expired or unreadable.
func (s *Server) loadSession(c *gin.Context) *models.ReviewSession {
	id, err := c.Cookie(sessionCookie)
	if err == nil && id != "" {
		sess, err := s.sessions.Load(c.Request.Context(), id)
		if err == nil {
			return sess
		}
		if !errors.Is(err, ErrSessionNotFound) {
			log.Printf("session load failed id=%s: %v", id, err)
		}
	}
	return NewSession(s.cfg.Server.DefaultPlayerID)
}

func (s *Server) storeSession(c *gin.Context, sess *models.ReviewSession) {
	if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
		log.Printf("session save failed id=%s: %v", sess.ID, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, int(s.cfg.Sessions.TTL.Seconds()), "/", "", false, true)
}

// viewerFor prefers an explicit player_id from the request over the session.
func viewerFor(c *gin.Context, sess *models.ReviewSession) string {
	if v := strings.TrimSpace(c.PostForm("player_id")); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Query("player_id")); v != "" {
		return v
	}
	return sess.ViewerID
}

// page fills the parts of PageData every render shares.
func (s *Server) page(sess *models.ReviewSession, data PageData) PageData {
	data.PlayerID = sess.ViewerID
	data.Recent = RecentLinks(sess.Recent, s.loc)
	saved, err := s.store.List()
	if err != nil {
		log.Printf("list saved matches: %v", err)
	}
	data.Saved = saved
	return data
}

func (s *Server) renderPage(c *gin.Context, status int, sess *models.ReviewSession, data PageData) {
	c.HTML(status, "page", s.page(sess, data))
}

// renderMatch reshapes m for the session viewer and renders it.
func (s *Server) renderMatch(c *gin.Context, sess *models.ReviewSession, m *models.Match, notice string) {
	view, err := Reshape(m, sess.ViewerID, s.loc)
	if err != nil {
		s.renderPage(c, http.StatusUnprocessableEntity, sess, PageData{Message: err.Error()})
		return
	}
	mine, opp, err := viewCards(view, s.cfg.Server.AssetsDir)
	if err != nil {
		log.Printf("render match game_id=%d: %v", m.GameID, err)
		s.renderPage(c, http.StatusInternalServerError, sess, PageData{Message: err.Error()})
		return
	}
	s.renderPage(c, http.StatusOK, sess, PageData{View: view, MyCards: mine, OppCards: opp, Notice: notice})
}

func viewCards(view *models.MatchView, assetsDir string) (mine, opp []PlayerCard, err error) {
	if mine, err = BuildCards(view.MyTeam, assetsDir); err != nil {
		return nil, nil, err
	}
	if opp, err = BuildCards(view.OpponentTeam, assetsDir); err != nil {
		return nil, nil, err
	}
	return mine, opp, nil
}

// Index shows the landing page and whatever match the session had open.
func (s *Server) Index(c *gin.Context) {
	sess := s.loadSession(c)
	if sess.Current != nil {
		s.renderMatch(c, sess, sess.Current, "")
		return
	}
	s.renderPage(c, http.StatusOK, sess, PageData{})
}

// LastMatch fetches and shows the player's most recent game.
func (s *Server) LastMatch(c *gin.Context) {
	sess := s.loadSession(c)
	playerID := strings.TrimSpace(c.PostForm("player_id"))
	if playerID == "" {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgNeedPlayer})
		return
	}
	sess.ViewerID = playerID

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	m, err := s.api.FetchLastMatch(ctx, playerID)
	if errors.Is(err, ErrNoGames) {
		sess.Current = nil
		s.storeSession(c, sess)
		s.renderPage(c, http.StatusOK, sess, PageData{Message: msgNoGames})
		return
	}
	if err != nil {
		log.Printf("fetch last match player=%s: %v", playerID, err)
		s.storeSession(c, sess)
		s.renderPage(c, http.StatusBadGateway, sess, PageData{Message: err.Error()})
		return
	}

	sess.Current = m
	s.storeSession(c, sess)
	s.renderMatch(c, sess, m, "")
}

// RecentMatches fetches the player's recent games and lists them.
func (s *Server) RecentMatches(c *gin.Context) {
	sess := s.loadSession(c)
	playerID := strings.TrimSpace(c.PostForm("player_id"))
	if playerID == "" {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgNeedPlayer})
		return
	}
	sess.ViewerID = playerID

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	resp, err := s.api.FetchRecentMatches(ctx, playerID, s.cfg.AOE4World.RecentLimit)
	if err != nil {
		log.Printf("fetch recent matches player=%s: %v", playerID, err)
		s.storeSession(c, sess)
		s.renderPage(c, http.StatusBadGateway, sess, PageData{Message: err.Error()})
		return
	}

	sess.Recent = resp.Games
	sess.Current = nil
	s.storeSession(c, sess)

	data := PageData{}
	if len(resp.Games) == 0 {
		data.Message = msgNoGames
	}
	s.renderPage(c, http.StatusOK, sess, data)
}

// RecentMatch opens one entry of the session's recent list.
func (s *Server) RecentMatch(c *gin.Context) {
	sess := s.loadSession(c)
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(sess.Recent) {
		s.renderPage(c, http.StatusNotFound, sess, PageData{Message: "Recent match not found. Fetch recent matches first."})
		return
	}
	m := sess.Recent[idx]
	sess.Current = &m
	s.storeSession(c, sess)
	s.renderMatch(c, sess, &m, "")
}

// SavedMatch opens a file from the data directory.
func (s *Server) SavedMatch(c *gin.Context) {
	sess := s.loadSession(c)
	sess.ViewerID = viewerFor(c, sess)

	m, err := s.store.Load(c.Param("filename"))
	if err != nil {
		log.Printf("load saved match %q: %v", c.Param("filename"), err)
		s.renderPage(c, loadErrorStatus(err), sess, PageData{Message: err.Error()})
		return
	}
	sess.Current = m
	s.storeSession(c, sess)
	s.renderMatch(c, sess, m, "")
}

// Upload opens a match file sent from the browser.
func (s *Server) Upload(c *gin.Context) {
	sess := s.loadSession(c)
	sess.ViewerID = viewerFor(c, sess)

	fh, err := c.FormFile("match_file")
	if err != nil {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgBadUpload})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgBadUpload})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgBadUpload})
		return
	}
	m, err := DecodeMatch(data)
	if err != nil {
		log.Printf("upload %q: %v", fh.Filename, err)
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgBadUpload})
		return
	}

	sess.Current = m
	s.storeSession(c, sess)
	s.renderMatch(c, sess, m, "")
}

// annotatedCurrent copies the session's match with the submitted annotations merged in.
func (s *Server) annotatedCurrent(c *gin.Context, sess *models.ReviewSession) (*models.Match, bool) {
	if sess.Current == nil {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: msgNoMatch})
		return nil, false
	}
	if err := c.Request.ParseForm(); err != nil {
		s.renderPage(c, http.StatusBadRequest, sess, PageData{Message: err.Error()})
		return nil, false
	}
	m := *sess.Current
	m.PlayerInput = CollectAnnotations(&m, c.Request.PostForm)
	return &m, true
}

// SaveMatch persists the open match with the annotations from the form.
func (s *Server) SaveMatch(c *gin.Context) {
	sess := s.loadSession(c)
	m, ok := s.annotatedCurrent(c, sess)
	if !ok {
		return
	}

	rec, err := s.SaveReview(c.Request.Context(), m, sess.ViewerID)
	if err != nil {
		log.Printf("save match game_id=%d: %v", m.GameID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidMatchName) || errors.Is(err, ErrBadStartTime) {
			status = http.StatusUnprocessableEntity
		}
		s.renderPage(c, status, sess, PageData{Message: err.Error()})
		return
	}

	sess.Current = m
	s.storeSession(c, sess)
	s.renderMatch(c, sess, m, "Saved match to "+rec.FilePath)
}

// DownloadMatch sends the annotated match back as a JSON attachment.
func (s *Server) DownloadMatch(c *gin.Context) {
	sess := s.loadSession(c)
	m, ok := s.annotatedCurrent(c, sess)
	if !ok {
		return
	}
	name, err := MatchName(m, s.loc)
	if err != nil {
		s.renderPage(c, http.StatusUnprocessableEntity, sess, PageData{Message: err.Error()})
		return
	}
	data, err := EncodeMatch(m)
	if err != nil {
		s.renderPage(c, http.StatusInternalServerError, sess, PageData{Message: err.Error()})
		return
	}

	sess.Current = m
	s.storeSession(c, sess)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name + ".json"}))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func loadErrorStatus(err error) int {
	var malformed *MalformedMatchError
	switch {
	case errors.Is(err, ErrInvalidMatchName):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
