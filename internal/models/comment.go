package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	AuthorID  uint      `json:"-" gorm:"not null;index"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView embeds the author profile for rendering.
type CommentView struct {
	Comment
	Author UserCompact `json:"author"`
}

func (c *Comment) View() CommentView {
	v := CommentView{Comment: *c}
	if c.Author != nil {
		v.Author = c.Author.ToCompact()
	}
	return v
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
