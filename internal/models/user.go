package models

import "time"

// User roles
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Field limits shared by validation and the schema
const (
	EmailMaxLength         = 254
	UsernameMaxLength      = 150
	NameMaxLength          = 150
	ConfirmationCodeLength = 6
	MaxConfirmationTries   = 5
	ReservedUsername       = "me"
	UsernamePattern        = `^[\w.@+-]+$`
	MaxAvatarSizeBytes     = 5 << 20
)

type User struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Email            string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username         string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName        string    `gorm:"size:150;not null" json:"first_name"`
	LastName         string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash     string    `gorm:"not null" json:"-"`
	Avatar           *string   `gorm:"size:512" json:"avatar"`
	Role             string    `gorm:"size:16;not null;default:'user'" json:"role"`
	ConfirmationCode *string   `gorm:"size:6" json:"-"`
	FailedCodeTries  int       `gorm:"not null;default:0" json:"-"`
	IsConfirmed      bool      `gorm:"not null;default:false" json:"-"`
}

// IsAdmin reports whether the user may manage the tag and ingredient catalog
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Subscription is a follow edge from User to Author.
type Subscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author;index" json:"author_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
