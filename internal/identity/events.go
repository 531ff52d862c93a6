package identity

import "time"

// Event names pushed to subscribers.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Metadata is the sign-up metadata stored with the account.
type Metadata struct {
	Name string `json:"name"`
	City string `json:"city"`
}

// User is the identity as the provider knows it.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"user_metadata"`
}

// Session is an authenticated session held for one client.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// AuthEvent is delivered to subscribers. Session is nil for EventSignedOut.
type AuthEvent struct {
	Event   Event
	Session *Session
}

// Handler receives auth events. It must not block.
type Handler func(AuthEvent)

// Subscription detaches a handler.
type Subscription interface {
	Unsubscribe()
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }
