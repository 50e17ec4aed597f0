// Package model defines the data structures shared across the service and
// repository layers.
package model

// GuestLifetimeDays is the validity window of a guest account, counted from
// its creation date. Expiry is always derived from CreatedOn, never stored.
const GuestLifetimeDays = 7

// User is a registered or guest account.
//
// Username and Email are each globally unique (enforced by the database and
// pre-checked at registration for field-scoped error messages). Email may be
// empty for guest accounts. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	PasswordHash         string `json:"-"`
	IsGuest              bool   `json:"is_guest"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	CreatedOn            Date   `json:"created_on"`
}

// guestExpiryDate is the first day on which the guest account counts as
// expired when strictly exceeded.
func (u *User) guestExpiryDate() Date {
	return u.CreatedOn.AddDays(GuestLifetimeDays)
}

// IsGuestExpired reports whether a guest account has outlived its 7-day
// window as of the given day. Always false for regular accounts.
func (u *User) IsGuestExpired(today Date) bool {
	if !u.IsGuest {
		return false
	}
	return today.After(u.guestExpiryDate())
}

// GuestDaysLeft returns the whole days remaining before guest expiry,
// clamped at zero. Returns nil for regular accounts.
func (u *User) GuestDaysLeft(today Date) *int {
	if !u.IsGuest {
		return nil
	}
	left := today.DaysUntil(u.guestExpiryDate())
	if left < 0 {
		left = 0
	}
	return &left
}

// Profile is the read-only user representation returned by the API.
// The guest fields are always server-computed.
type Profile struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	IsGuest              bool   `json:"is_guest"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	CreatedOn            Date   `json:"created_on"`
	GuestDaysLeft        *int   `json:"guest_days_left"`
	IsGuestExpired       bool   `json:"is_guest_expired"`
}

// Profile builds the API representation of the user as of the given day.
func (u *User) Profile(today Date) Profile {
	return Profile{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		IsGuest:              u.IsGuest,
		NotificationsEnabled: u.NotificationsEnabled,
		CreatedOn:            u.CreatedOn,
		GuestDaysLeft:        u.GuestDaysLeft(today),
		IsGuestExpired:       u.IsGuestExpired(today),
	}
}
