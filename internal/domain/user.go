package domain

import (
	"strings"
	"time"
)

// Account is the credential record owned by the identity provider.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	City         string
	CreatedAt    time.Time
}

// Profile is the public/editable record of an account. IsAdmin and Blocked are the
// only authorization inputs the session resolver reads.
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	City         string     `json:"city"`
	Phone        string     `json:"phone_whatsapp"`
	Bio          string     `json:"bio"`
	AvatarURL    string     `json:"avatar_url"`
	IsAdmin      bool       `json:"is_admin"`
	Blocked      bool       `json:"blocked"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// ProfileUpdate carries a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	City      *string `json:"city"`
	Phone     *string `json:"phone_whatsapp"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.City == nil && u.Phone == nil && u.Bio == nil && u.AvatarURL == nil
}

// Normalize trims every provided field.
func (u *ProfileUpdate) Normalize() {
	for _, f := range []*string{u.Name, u.City, u.Phone, u.Bio, u.AvatarURL} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// EmailLocalPart returns the part of an address before '@'.
func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if idx := strings.Index(email, "@"); idx >= 0 {
		return email[:idx]
	}
	return email
}
