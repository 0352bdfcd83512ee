// Package domain holds the session data model shared by the orchestrators,
// the persistence adapter and the service backends.
package domain

import "time"

// Subscription is the plan a user is on.
type Subscription string

const (
	SubscriptionFreeTrial Subscription = "Free Trial"
	SubscriptionPro       Subscription = "Pro"
	SubscriptionExpired   Subscription = "Expired"
)

// Valid reports whether s is one of the known plans.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionFreeTrial, SubscriptionPro, SubscriptionExpired:
		return true
	}
	return false
}

// Settings are per-user display preferences.
type Settings struct {
	DarkMode      bool `json:"darkMode" yaml:"darkMode"`
	Notifications bool `json:"notifications" yaml:"notifications"`
}

// User is the local account. TrialEndsAt is set while the user is or was on
// the free trial and cleared once the subscription becomes Pro.
type User struct {
	Name         string       `json:"name" yaml:"name"`
	Subscription Subscription `json:"subscription" yaml:"subscription"`
	TrialEndsAt  *time.Time   `json:"trialEndsAt,omitempty" yaml:"trialEndsAt,omitempty"`
	Settings     Settings     `json:"settings" yaml:"settings"`
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	if u.TrialEndsAt != nil {
		t := *u.TrialEndsAt
		u.TrialEndsAt = &t
	}
	return u
}

// ScanStatus is the verdict of a threat scan.
type ScanStatus string

const (
	ScanClean       ScanStatus = "clean"
	ScanThreatFound ScanStatus = "threat_found"
)

// ScanResult is produced once per file selection, before analysis.
type ScanResult struct {
	Status        ScanStatus `json:"status"`
	ThreatName    string     `json:"threatName,omitempty"`
	ScannedAt     time.Time  `json:"scannedAt"`
	EngineVersion string     `json:"engineVersion"`
}

// ConversionSuggestion is a candidate target format.
type ConversionSuggestion struct {
	Format    string `json:"format"`
	Extension string `json:"extension"`
}

// ConversionResult is the converted payload returned by the service. Content
// is raw text when IsBinary is false, otherwise base64.
type ConversionResult struct {
	Content  string `json:"content"`
	IsBinary bool   `json:"isBinary"`
	MimeType string `json:"mimeType"`
}

// HistoryEntry records one successful conversion.
type HistoryEntry struct {
	ID           string    `json:"id" yaml:"id"`
	OriginalName string    `json:"originalName" yaml:"originalName"`
	FromFormat   string    `json:"fromFormat" yaml:"fromFormat"`
	ToFormat     string    `json:"toFormat" yaml:"toFormat"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
}
