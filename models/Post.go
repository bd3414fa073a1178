package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	UserID   uint           `json:"userID" gorm:"not null;index"`
	Content  string         `json:"content" gorm:"type:text"`
	Images   string         `json:"images"`   // JSON array of URLs
	Mentions datatypes.JSON `json:"mentions"` // array of mentioned user IDs

	User     User          `json:"user" gorm:"foreignKey:UserID"`
	Comments []PostComment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	Likes    []PostLike    `json:"-" gorm:"foreignKey:PostID"`

	// Derived counts, filled by queries, never stored.
	LikeCount    int64 `json:"likeCount" gorm:"-"`
	CommentCount int64 `json:"commentCount" gorm:"-"`
	LikedByMe    bool  `json:"likedByMe" gorm:"-"`
}

type PostComment struct {
	gorm.Model
	PostID  uint   `json:"postID" gorm:"not null;index"`
	UserID  uint   `json:"userID" gorm:"not null"`
	Content string `json:"content" gorm:"type:text;not null"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

// PostLike has no soft delete so an unliked post can be liked again without
// tripping the unique pair index.
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postID" gorm:"not null;index:idx_post_like,unique"`
	UserID    uint      `json:"userID" gorm:"not null;index:idx_post_like,unique"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON converts Images to an array and Mentions to plain IDs.
func (p *Post) MarshalJSON() ([]byte, error) {
	type Alias Post
	aux := &struct {
		Images   []string `json:"images"`
		Mentions []uint   `json:"mentions"`
		*Alias
	}{
		Images:   []string{},
		Mentions: []uint{},
		Alias:    (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if p.Mentions != nil {
		var mentions []uint
		if err := json.Unmarshal(p.Mentions, &mentions); err == nil {
			aux.Mentions = mentions
		}
	}

	return json.Marshal(aux)
}
