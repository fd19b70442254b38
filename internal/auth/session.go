package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/yatube/internal/models"
)

const userIdKey = "id"

type Session struct {
	sessions.Session
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Clear()
	s.Set(userIdKey, user.ID)
	return errors.Wrap(s.Save(), "save session")
}

func (s *Session) LogoutUser() error {
	s.Delete(userIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return errors.Wrap(s.Save(), "save session")
}

// UserID is zero for anonymous sessions.
func (s *Session) UserID() int {
	id, _ := s.Get(userIdKey).(int)
	return id
}

// User loads the session's user; nil when anonymous or the user is gone.
func (s *Session) User(db *gorm.DB) *models.User {
	id := s.UserID()
	if id == 0 {
		return nil
	}
	var user models.User
	if db.First(&user, id).Error != nil {
		return nil
	}
	return &user
}
