package models

import "time"

type Video struct {
	ID           string
	OwnerID      string
	FileURL      string
	ThumbnailURL string
	Title        string
	Description  string
	Duration     float64
	Views        int64
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeTarget distinguishes what a like row points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
)

type Like struct {
	ID        string
	UserID    string
	Target    LikeTarget
	TargetID  string
	CreatedAt time.Time
}

type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile is a user profile augmented with per-viewer social state.
type ChannelProfile struct {
	User             User
	Subscribers      int64
	SubscribedTo     int64
	ViewerSubscribed bool
}
