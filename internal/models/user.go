package models

import "time"

type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// AssetSlot names a remote-asset attachment point on a user.
type AssetSlot string

const (
	SlotAvatar AssetSlot = "avatar"
	SlotCover  AssetSlot = "cover"
)

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash []byte
	Role         UserRole
	// SessionToken holds the currently valid long-lived token, or nil when
	// signed out. Rotation swaps it atomically at the store.
	SessionToken *string
	AvatarURL    *string
	CoverURL     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = nil
	u.SessionToken = nil
	return u
}

// SlotURL reads the remote reference currently held by the given slot.
func (u User) SlotURL(slot AssetSlot) *string {
	switch slot {
	case SlotAvatar:
		return u.AvatarURL
	case SlotCover:
		return u.CoverURL
	}
	return nil
}
