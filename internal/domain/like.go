package domain

import "time"

// Like records that a user endorses a business. At most one row exists per
// (UserID, BusinessID); there is no stored "unliked" state.
type Like struct {
	ID         string    `json:"_id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"userId" gorm:"size:128;not null;uniqueIndex:idx_likes_user_business"`
	BusinessID string    `json:"businessId" gorm:"size:36;not null;index;uniqueIndex:idx_likes_user_business"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

type LikeAction string

const (
	ActionLiked   LikeAction = "liked"
	ActionUnliked LikeAction = "unliked"
)

// ToggleResult is the outcome of flipping a like.
type ToggleResult struct {
	Liked  bool       `json:"liked"`
	Action LikeAction `json:"action"`
}

// LikeStatus is what a viewer sees for one business.
type LikeStatus struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// LikeEvent is pushed to live subscribers after every toggle. It carries
// the new count only; who toggled is never published.
type LikeEvent struct {
	BusinessID string `json:"businessId"`
	Count      int64  `json:"count"`
}
