package domain

import (
	"fmt"
	"strings"
	"time"
)

// Listing is a service advertisement published by a provider.
type Listing struct {
	ID               string        `json:"id"`
	OwnerID          string        `json:"user_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Price            float64       `json:"price"`
	City             string        `json:"city"`
	WhatsApp         string        `json:"whatsapp,omitempty"`
	ImageURL         string        `json:"image_url,omitempty"`
	Active           bool          `json:"active"`
	Verified         bool          `json:"is_verified"`
	HighlightedUntil *time.Time    `json:"highlighted_until,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	Owner            *ListingOwner `json:"profiles,omitempty"`
}

// Highlighted reports whether a highlight is running at now.
func (l Listing) Highlighted(now time.Time) bool {
	return l.HighlightedUntil != nil && l.HighlightedUntil.After(now)
}

// ListingOwner is the subset of the owner's profile shown next to a listing.
type ListingOwner struct {
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	City         string     `json:"city"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Phone        string     `json:"phone_whatsapp,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	PremiumBadge bool       `json:"premium_badge"`
	Priority     bool       `json:"-"`
}

// ListingInput carries the editable listing fields.
type ListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	City        string  `json:"city"`
	WhatsApp    string  `json:"whatsapp"`
	ImageURL    string  `json:"image_url"`
}

// Validate trims the input and checks required fields.
func (in *ListingInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.City = strings.TrimSpace(in.City)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case in.City == "":
		return fmt.Errorf("%w: city is required", ErrValidation)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// PublicFilter narrows the public listing query.
type PublicFilter struct {
	City string
}
