package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// inputMode tracks which prompt, if any, is capturing keystrokes.
type inputMode int

const (
	inputNone inputMode = iota
	inputPath
	inputRename
	inputCode
)

// Deps are the collaborators a Model drives.
type Deps struct {
	Service Service
	Store   Store
	Saver   Saver
	Logger  zerolog.Logger
	Now     func() time.Time
	NewID   func() string
}

// Model is the root bubbletea model and the owner of all session state.
// Every transition happens in Update or in a method returning a new Model;
// service calls run in commands whose results come back as messages.
type Model struct {
	// Collaborators
	svc   Service
	store Store
	saver Saver
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	// Selection. generation increases on every selection and reset; results
	// tagged with an older generation are dropped.
	file       *domain.File
	scan       *domain.ScanResult
	analysis   *domain.AnalysisResult
	scripts    map[string]string
	generation uint64

	// Busy state, one flag per orchestrator
	analyzing      bool
	converting     bool
	loadingMessage string

	// Feedback
	errorMessage string
	notice       string
	noticeSeq    int

	// Session
	user          *domain.User
	history       []domain.HistoryEntry
	sessionLoaded bool

	// Modals
	showProfile bool
	showGate    bool

	// Prompt
	input      inputMode
	inputValue string

	// UI state
	selectedSuggestion int
	width              int
	height             int
	theme              ui.Theme
}

// New creates a Model with default state.
func New(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.NewString() }
	}
	return Model{
		svc:   deps.Service,
		store: deps.Store,
		saver: deps.Saver,
		log:   deps.Logger,
		now:   deps.Now,
		newID: deps.NewID,
		theme: ui.NewTheme(true),
	}
}

// Init returns the initial command: load the persisted session.
func (m Model) Init() tea.Cmd {
	return loadSessionCmd(m.store)
}

// Loading reports whether any orchestrator is busy.
func (m Model) Loading() bool {
	return m.analyzing || m.converting
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SessionLoadedMsg:
		m.sessionLoaded = true
		m.history = msg.History
		if msg.User == nil {
			return m, nil
		}
		return m.startSession(*msg.User)

	case LoginMsg:
		if msg.User == nil {
			u := newTrialUser(m.now())
			m.log.Info().Str("user", u.Name).Msg("created trial account")
			m = m.setUser(u)
			return m, saveUserCmd(m.store, m.user)
		}
		return m.startSession(*msg.User)

	case FileLoadedMsg:
		return m.SelectFile(msg.File)

	case FileLoadErrorMsg:
		m.log.Warn().Err(msg.Err).Str("path", msg.Path).Msg("open file failed")
		m.errorMessage = "Could not open " + msg.Path + ": " + msg.Err.Error()
		return m, nil

	case ScanCompletedMsg:
		return m.handleScanCompleted(msg)

	case ScanFailedMsg:
		return m.handleScanFailed(msg)

	case AnalysisCompletedMsg:
		return m.handleAnalysisCompleted(msg)

	case AnalysisFailedMsg:
		return m.handleAnalysisFailed(msg)

	case ConversionCompletedMsg:
		return m.handleConversionCompleted(msg)

	case ConversionFailedMsg:
		return m.handleConversionFailed(msg)

	case PersistErrorMsg:
		m.log.Warn().Err(msg.Err).Str("record", msg.Record).Msg("persist failed")
		return m, nil

	case ClearNoticeMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}

	if m.input != inputNone {
		return m.handleInputKey(msg)
	}

	if m.user == nil {
		switch msg.String() {
		case KeyQuit:
			return m, tea.Quit
		case KeyLogin:
			if !m.sessionLoaded {
				return m, nil
			}
			return m.Login()
		}
		return m, nil
	}

	if m.showProfile {
		return m.handleProfileKey(msg)
	}

	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyOpen:
		if m.converting {
			return m, nil
		}
		m.input = inputPath
		m.inputValue = ""
		return m, nil

	case KeyRename:
		if m.file == nil {
			return m, nil
		}
		m.input = inputRename
		m.inputValue = m.file.Name()
		return m, nil

	case KeyReset:
		return m.Reset(), nil

	case KeyProfile:
		m.showProfile = true
		return m, nil

	case KeyNext, KeyDown:
		if n := len(m.suggestions()); n > 0 && m.selectedSuggestion < n-1 {
			m.selectedSuggestion++
		}
		return m, nil

	case KeyPrev, KeyUp:
		if m.selectedSuggestion > 0 {
			m.selectedSuggestion--
		}
		return m, nil

	case KeyEnter:
		suggestions := m.suggestions()
		if m.selectedSuggestion >= len(suggestions) {
			return m, nil
		}
		return m.Convert(suggestions[m.selectedSuggestion])
	}

	return m, nil
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc, KeyProfile:
		m.showProfile = false
		return m, nil
	case KeyQuit:
		return m, tea.Quit
	case KeyDarkMode:
		return m.ToggleDarkMode()
	case KeyNotifications:
		return m.ToggleNotifications()
	case KeyUpgrade:
		if m.user.Subscription == domain.SubscriptionPro {
			return m, nil
		}
		m.input = inputCode
		m.inputValue = ""
		return m, nil
	case KeyLogout:
		return m.Logout(), nil
	case KeyDeleteAccount:
		return m.DeleteAccount()
	}
	return m, nil
}

// handleInputKey edits and submits the active prompt. The activation prompt
// of the subscription gate cannot be dismissed.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.input == inputCode && m.showGate {
			return m, nil
		}
		m.input = inputNone
		m.inputValue = ""
		return m, nil

	case tea.KeyEnter:
		return m.submitInput()

	case tea.KeyBackspace:
		if r := []rune(m.inputValue); len(r) > 0 {
			m.inputValue = string(r[:len(r)-1])
		}
		return m, nil

	case tea.KeySpace:
		m.inputValue += " "
		return m, nil

	case tea.KeyRunes:
		m.inputValue += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.inputValue)
	mode := m.input
	m.input = inputNone
	m.inputValue = ""

	switch mode {
	case inputPath:
		if value == "" {
			return m, nil
		}
		return m, loadFileCmd(expandHome(value))

	case inputRename:
		return m.Rename(value), nil

	case inputCode:
		next, cmd := m.Activate(value)
		if next.showGate {
			next.input = inputCode
		}
		return next, cmd
	}
	return m, nil
}

// setNotice shows a transient message.
func (m Model) setNotice(text string) (Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, clearNoticeCmd(m.noticeSeq)
}

func (m Model) suggestions() []domain.ConversionSuggestion {
	if m.analysis == nil {
		return nil
	}
	return m.analysis.Suggestions()
}

// noticeTTL is how long a notice stays on screen.
var noticeTTL = 5 * time.Second

// clearNoticeCmd fires after noticeTTL to clear a notice.
func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Seq: seq}
	})
}
