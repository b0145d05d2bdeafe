package app

import (
	"context"
	"log"
	"time"

	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/app/models"
)

// Server holds everything the handlers share. Index and Notifier are
// optional; leave them nil when not configured.
type Server struct {
	cfg      *config.Config
	api      *AOE4WorldClient
	store    *MatchStore
	sessions SessionStore
	index    SaveIndex
	notifier SaveNotifier
	loc      *time.Location
	now      func() time.Time
}

type ServerDeps struct {
	API      *AOE4WorldClient
	Store    *MatchStore
	Sessions SessionStore
	Index    SaveIndex
	Notifier SaveNotifier
	Location *time.Location
}

func NewServer(cfg *config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:      cfg,
		api:      deps.API,
		store:    deps.Store,
		sessions: deps.Sessions,
		index:    deps.Index,
		notifier: deps.Notifier,
		loc:      deps.Location,
		now:      time.Now,
	}
	if s.api == nil {
		s.api = NewAOE4WorldClient(cfg.AOE4World, nil)
	}
	if s.store == nil {
		s.store = NewMatchStore(cfg.Storage.DataDir)
	}
	if s.sessions == nil {
		s.sessions = NewMemorySessions(cfg.Sessions.TTL)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// SaveReview writes the match to the data directory, then indexes and
// announces it. Only the file write can fail the save.
func (s *Server) SaveReview(ctx context.Context, m *models.Match, viewerID string) (models.SavedReview, error) {
	name, err := MatchName(m, s.loc)
	if err != nil {
		return models.SavedReview{}, err
	}
	path, err := s.store.Save(m, name)
	if err != nil {
		return models.SavedReview{}, err
	}

	rec := models.SavedReview{
		MatchName: name,
		GameID:    m.GameID,
		ViewerID:  viewerID,
		Map:       m.Map,
		Kind:      m.Kind,
		StartedAt: m.StartedAt,
		FilePath:  path,
		SavedAt:   s.now().UTC(),
	}
	log.Printf("saved match name=%q game_id=%d viewer=%s path=%s", name, m.GameID, viewerID, path)

	if s.index != nil {
		if err := s.index.Record(ctx, rec); err != nil {
			log.Printf("index save failed for %s: %v", name, err)
		}
	}
	if s.notifier != nil {
		s.publishSaved(ctx, m, rec)
	}
	return rec, nil
}

func (s *Server) publishSaved(ctx context.Context, m *models.Match, rec models.SavedReview) {
	record, err := EncodeMatch(m)
	if err != nil {
		log.Printf("encode saved match event for %s: %v", rec.MatchName, err)
		return
	}
	event := models.SavedMatchEvent{
		MatchName: rec.MatchName,
		GameID:    rec.GameID,
		ViewerID:  rec.ViewerID,
		SavedAt:   rec.SavedAt,
		Record:    record,
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		log.Printf("publish saved match event for %s: %v", rec.MatchName, err)
	}
}
