package models

import "time"

// Like represents a like on a post. A user likes a post at most once.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_post_user_like"`
	UserID    uint      `json:"-" gorm:"not null;index;uniqueIndex:idx_post_user_like"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeView struct {
	Like
	User UserCompact `json:"user"`
}

func (l *Like) View() LikeView {
	v := LikeView{Like: *l}
	if l.User != nil {
		v.User = l.User.ToCompact()
	}
	return v
}
