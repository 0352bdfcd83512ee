// Package subscription decides trial expiry and validates activation codes.
// Every function is pure: callers supply the clock.
package subscription

import (
	"time"

	"github.com/jwulff/fileforge/internal/domain"
)

// TrialWindow is how long a new account stays on the free trial.
const TrialWindow = 3 * 24 * time.Hour

// DefaultUserName is given to every account created on first login.
const DefaultUserName = "Guest User"

// ActivationCode unlocks Pro. Known limitation: it ships with the client and
// is compared with ==; it is a cosmetic gate, not a secret.
const ActivationCode = "PRO-YEARLY-2024"

// Resolve returns user with the subscription moved to Expired when the trial
// ended before now. Any other user is returned unchanged.
func Resolve(user domain.User, now time.Time) domain.User {
	if user.Subscription != domain.SubscriptionFreeTrial || user.TrialEndsAt == nil {
		return user
	}
	if !now.After(*user.TrialEndsAt) {
		return user
	}
	expired := user.Clone()
	expired.Subscription = domain.SubscriptionExpired
	return expired
}

// NewTrialUser creates the account used on first login.
func NewTrialUser(now time.Time) domain.User {
	ends := now.Add(TrialWindow)
	return domain.User{
		Name:         DefaultUserName,
		Subscription: domain.SubscriptionFreeTrial,
		TrialEndsAt:  &ends,
		Settings: domain.Settings{
			DarkMode:      true,
			Notifications: false,
		},
	}
}

// Activate upgrades user to Pro when code matches ActivationCode. On a
// mismatch it returns user untouched and false.
func Activate(user domain.User, code string) (domain.User, bool) {
	if code != ActivationCode {
		return user, false
	}
	pro := user.Clone()
	pro.Subscription = domain.SubscriptionPro
	pro.TrialEndsAt = nil
	return pro, true
}
