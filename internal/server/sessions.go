package server

import (
	"context"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/wader/gormstore/v2"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/logging"
)

// sessionStore keeps login sessions in the "sessions" table. Expired rows
// are removed by Server.CleanupSessions.
type sessionStore struct {
	*gormstore.Store
}

func newSessionStore(db *gorm.DB, secret string) *sessionStore {
	return &sessionStore{gormstore.New(db, []byte(secret))}
}

func (s *sessionStore) Options(options sessions.Options) {
	s.Store.SessionOpts = options.ToGorillaOptions()
}

// CleanupSessions deletes expired sessions every interval until ctx is done.
func (s *Server) CleanupSessions(ctx context.Context, interval time.Duration) {
	quit := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(quit)
	}()
	logging.Log.WithField("interval", interval).Debug("session cleanup started")
	s.sessions.PeriodicCleanup(interval, quit)
	logging.Log.Debug("session cleanup stopped")
}
