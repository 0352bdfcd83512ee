package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/subscription"
	"github.com/jwulff/fileforge/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var newTrialUser = subscription.NewTrialUser

// startSession installs a persisted user, normalizing a stale trial once.
func (m Model) startSession(u domain.User) (tea.Model, tea.Cmd) {
	resolved := subscription.Resolve(u, m.now())
	changed := resolved.Subscription != u.Subscription

	m = m.setUser(resolved)
	if changed {
		m.log.Info().Str("user", resolved.Name).Msg("trial expired")
		return m, saveUserCmd(m.store, m.user)
	}
	return m, nil
}

// setUser replaces the active user and derives the theme and gate from it.
func (m Model) setUser(u domain.User) Model {
	m.user = &u
	m.theme = ui.NewTheme(u.Settings.DarkMode)

	gated := u.Subscription == domain.SubscriptionExpired
	m.showGate = gated
	if gated {
		m.showProfile = false
		m.input = inputCode
		m.inputValue = ""
	} else if m.input == inputCode {
		m.input = inputNone
	}
	return m
}

// Login restores the persisted account, creating a trial account when there
// is none.
func (m Model) Login() (Model, tea.Cmd) {
	return m, loginCmd(m.store)
}

// Logout ends the session in memory only. The persisted user and history stay
// so a later login restores the same account. The current selection is kept.
func (m Model) Logout() Model {
	m.user = nil
	m.showProfile = false
	m.showGate = false
	if m.input == inputCode {
		m.input = inputNone
		m.inputValue = ""
	}
	return m
}

// DeleteAccount removes the persisted user. History is kept.
func (m Model) DeleteAccount() (Model, tea.Cmd) {
	if m.user == nil {
		return m, nil
	}
	m.log.Info().Str("user", m.user.Name).Msg("account deleted")
	m = m.Logout()
	return m, saveUserCmd(m.store, nil)
}

// Activate upgrades the active user when code is valid. An invalid code
// leaves the user untouched and shows a message.
func (m Model) Activate(code string) (Model, tea.Cmd) {
	if m.user == nil {
		return m, nil
	}
	updated, ok := subscription.Activate(*m.user, code)
	if !ok {
		m.errorMessage = "Invalid activation code."
		return m, nil
	}

	m.errorMessage = ""
	m = m.setUser(updated)
	m.log.Info().Str("user", updated.Name).Msg("subscription activated")
	m, notice := m.setNotice("Subscription activated. Welcome to Pro!")
	return m, tea.Batch(saveUserCmd(m.store, m.user), notice)
}

// ToggleDarkMode flips the dark mode setting and persists it.
func (m Model) ToggleDarkMode() (Model, tea.Cmd) {
	return m.updateSettings(func(s *domain.Settings) { s.DarkMode = !s.DarkMode })
}

// ToggleNotifications flips the notifications setting and persists it.
func (m Model) ToggleNotifications() (Model, tea.Cmd) {
	return m.updateSettings(func(s *domain.Settings) { s.Notifications = !s.Notifications })
}

func (m Model) updateSettings(change func(*domain.Settings)) (Model, tea.Cmd) {
	if m.user == nil {
		return m, nil
	}
	u := m.user.Clone()
	change(&u.Settings)
	m = m.setUser(u)
	return m, saveUserCmd(m.store, m.user)
}

// Reset clears the selection and everything derived from it. The user and
// history are never touched. Refused while a conversion is running.
func (m Model) Reset() Model {
	if m.converting {
		return m
	}
	m.generation++
	m.file = nil
	m.scan = nil
	m.analysis = nil
	m.scripts = nil
	m.errorMessage = ""
	m.analyzing = false
	m.loadingMessage = ""
	m.selectedSuggestion = 0
	return m
}

// Rename replaces the selected file handle with a renamed copy.
func (m Model) Rename(name string) Model {
	name = strings.TrimSpace(name)
	if m.file == nil || name == "" || name != filepath.Base(name) {
		return m
	}
	renamed := m.file.Rename(name)
	m.file = &renamed
	return m
}

// loadSessionCmd reads the persisted user and history.
func loadSessionCmd(store Store) tea.Cmd {
	return func() tea.Msg {
		return SessionLoadedMsg{User: store.LoadUser(), History: store.LoadHistory()}
	}
}

// loginCmd looks up the persisted user.
func loginCmd(store Store) tea.Cmd {
	return func() tea.Msg {
		return LoginMsg{User: store.LoadUser()}
	}
}

// saveUserCmd persists u, or deletes the record when u is nil.
func saveUserCmd(store Store, u *domain.User) tea.Cmd {
	var snapshot *domain.User
	if u != nil {
		c := u.Clone()
		snapshot = &c
	}
	return func() tea.Msg {
		if err := store.SaveUser(snapshot); err != nil {
			return PersistErrorMsg{Record: "user", Err: err}
		}
		return nil
	}
}

// saveHistoryCmd overwrites the persisted history log.
func saveHistoryCmd(store Store, entries []domain.HistoryEntry) tea.Cmd {
	snapshot := append([]domain.HistoryEntry(nil), entries...)
	return func() tea.Msg {
		if err := store.SaveHistory(snapshot); err != nil {
			return PersistErrorMsg{Record: "history", Err: err}
		}
		return nil
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
