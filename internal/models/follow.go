package models

import "time"

// Follow is a directed edge: FollowerID receives FollowingID's posts in their feed.
// The pair is unique and a user can never follow themselves.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_following;check:no_self_follow,follower_id <> following_id"`
	FollowingID uint      `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	Follower    *User     `json:"follower,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following   *User     `json:"following,omitempty" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
}
