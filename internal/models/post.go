package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// TitleSize is how much of the text a post shows in listings and admin-like places.
	TitleSize = 15
	// HeadlineSize is how much of the text is used as the post detail page title.
	HeadlineSize = 30
)

// Post is a blog entry. PubDate is written once, on insert.
type Post struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PubDate   time.Time `gorm:"autoCreateTime;<-:create;index" json:"pub_date"`
	AuthorID  int       `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID   *int      `gorm:"index" json:"group_id"`
	Group     *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image     string    `gorm:"size:255" json:"image"`
	Thumbnail string    `gorm:"size:255" json:"thumbnail"`
}

func (p Post) String() string {
	return Truncate(p.Text, TitleSize)
}

// Headline is the text prefix used as the detail page title.
func (p Post) Headline() string {
	return Truncate(p.Text, HeadlineSize)
}

// NewestFirst orders posts or comments by publication date, newest first.
// Rows created within the same clock tick keep insertion order reversed.
func NewestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("pub_date DESC").Order("id DESC")
}

// WithRelations preloads what every post listing renders.
func WithRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Group")
}

// Truncate cuts s to at most n characters (not bytes).
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
