package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jwulff/fileforge/internal/backend"
	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/download"
	"github.com/jwulff/fileforge/internal/subscription"
)

func TestMain(m *testing.M) {
	noticeTTL = time.Millisecond
	os.Exit(m.Run())
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeService answers with canned results. Convert and GenerateScripts run
// concurrently, so recorded calls are guarded.
type fakeService struct {
	mu sync.Mutex

	scanErr    error
	analyzeErr error
	scriptsErr error
	convertErr error
	analysis   domain.AnalysisResult
	scripts    map[string]string
	conversion domain.ConversionResult

	scanned      []string
	analyzed     []domain.ScanStatus
	scriptFormat [2]string
	converted    []string
}

func newFakeService() *fakeService {
	return &fakeService{
		analysis: domain.NewFileAnalysis(domain.FileAnalysis{
			FileType:    "Word Document",
			Extension:   ".docx",
			Description: "A quarterly report.",
			CommonUses:  []string{"Reports"},
			ConversionSuggestions: []domain.ConversionSuggestion{
				{Format: "PDF", Extension: ".pdf"},
				{Format: "Plain Text", Extension: ".txt"},
			},
		}),
		scripts: map[string]string{"python": "convert('report.docx')"},
		conversion: domain.ConversionResult{
			Content:  base64.StdEncoding.EncodeToString([]byte("%PDF-1.7")),
			IsBinary: true,
			MimeType: "application/pdf",
		},
	}
}

func (s *fakeService) Scan(_ context.Context, f domain.File) (domain.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanned = append(s.scanned, f.Name())
	if s.scanErr != nil {
		return domain.ScanResult{}, s.scanErr
	}
	return domain.ScanResult{Status: domain.ScanClean, ScannedAt: testNow, EngineVersion: "test 1.0"}, nil
}

func (s *fakeService) Analyze(_ context.Context, _ domain.File, status domain.ScanStatus) (domain.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzed = append(s.analyzed, status)
	if s.analyzeErr != nil {
		return domain.AnalysisResult{}, s.analyzeErr
	}
	return s.analysis, nil
}

func (s *fakeService) GenerateScripts(_ context.Context, src, tgt string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptFormat = [2]string{src, tgt}
	if s.scriptsErr != nil {
		return nil, s.scriptsErr
	}
	return s.scripts, nil
}

func (s *fakeService) Convert(_ context.Context, f domain.File, tgt string) (domain.ConversionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converted = append(s.converted, f.Name()+"->"+tgt)
	if s.convertErr != nil {
		return domain.ConversionResult{}, s.convertErr
	}
	return s.conversion, nil
}

type fakeStore struct {
	user        *domain.User
	history     []domain.HistoryEntry
	userSaves   int
	userDeletes int
}

func (s *fakeStore) LoadUser() *domain.User {
	if s.user == nil {
		return nil
	}
	u := s.user.Clone()
	return &u
}

func (s *fakeStore) LoadHistory() []domain.HistoryEntry {
	return append([]domain.HistoryEntry(nil), s.history...)
}

func (s *fakeStore) SaveUser(u *domain.User) error {
	if u == nil {
		s.userDeletes++
		s.user = nil
		return nil
	}
	s.userSaves++
	c := u.Clone()
	s.user = &c
	return nil
}

func (s *fakeStore) SaveHistory(entries []domain.HistoryEntry) error {
	s.history = append([]domain.HistoryEntry(nil), entries...)
	return nil
}

type fakeSaver struct {
	saved map[string]download.Payload
}

func (s *fakeSaver) Save(name string, p download.Payload) (string, error) {
	if s.saved == nil {
		s.saved = make(map[string]download.Payload)
	}
	s.saved[name] = p
	return "/downloads/" + name, nil
}

type harness struct {
	svc   *fakeService
	store *fakeStore
	saver *fakeSaver
}

func newHarness() *harness {
	return &harness{svc: newFakeService(), store: &fakeStore{}, saver: &fakeSaver{}}
}

func (h *harness) model() Model {
	ids := 0
	m := New(Deps{
		Service: h.svc,
		Store:   h.store,
		Saver:   h.saver,
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return testNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
	m.width = 100
	m.height = 30
	return m
}

// loggedIn returns a model with an active trial user, after startup.
func (h *harness) loggedIn(t *testing.T) Model {
	t.Helper()
	u := subscription.NewTrialUser(testNow)
	h.store.user = &u
	m := h.model()
	return drain(m, m.Init())
}

// drain runs cmd and every command produced while updating, feeding
// the results back into m. Notice timers are run but not applied.
func drain(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil, ClearNoticeMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		updated, c := m.Update(msg)
		m = updated.(Model)
		queue = append(queue, c)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case KeyCtrlC:
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		updated, cmd := m.Update(key(k))
		m = drain(updated.(Model), cmd)
	}
	return m
}

func reportFile() domain.File {
	return domain.NewFile("report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", testNow, []byte("PK\x03\x04 docx"))
}

func selectReport(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := m.SelectFile(reportFile())
	m = drain(m, cmd)
	if m.analysis == nil {
		t.Fatalf("analysis = nil after selection, error %q", m.errorMessage)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := newHarness().model()
	if m.Loading() {
		t.Error("new model should not be loading")
	}
	if m.user != nil {
		t.Error("new model should have no user")
	}
	if !m.theme.Dark {
		t.Error("new model should use the dark theme")
	}
}

func TestInitLoadsSession(t *testing.T) {
	h := newHarness()
	u := subscription.NewTrialUser(testNow)
	h.store.user = &u
	h.store.history = []domain.HistoryEntry{{ID: "h1", OriginalName: "a.txt"}}

	m := h.model()
	m = drain(m, m.Init())

	if !m.sessionLoaded {
		t.Error("session should be loaded")
	}
	if m.user == nil || m.user.Name != subscription.DefaultUserName {
		t.Fatalf("user = %+v, want %q", m.user, subscription.DefaultUserName)
	}
	if len(m.history) != 1 || m.history[0].ID != "h1" {
		t.Errorf("history = %+v", m.history)
	}
	if h.store.userSaves != 0 {
		t.Errorf("userSaves = %d, want 0 for a current trial", h.store.userSaves)
	}
}

func TestSessionLoadExpiresStaleTrial(t *testing.T) {
	h := newHarness()
	u := subscription.NewTrialUser(testNow.Add(-4 * 24 * time.Hour))
	h.store.user = &u

	m := h.model()
	m = drain(m, m.Init())

	if m.user.Subscription != domain.SubscriptionExpired {
		t.Errorf("subscription = %q, want %q", m.user.Subscription, domain.SubscriptionExpired)
	}
	if !m.showGate {
		t.Error("gate should be shown for an expired user")
	}
	if m.input != inputCode {
		t.Errorf("input = %d, want activation prompt", m.input)
	}
	if h.store.user.Subscription != domain.SubscriptionExpired {
		t.Errorf("persisted subscription = %q, want %q", h.store.user.Subscription, domain.SubscriptionExpired)
	}
}

func TestLoginCreatesTrialUser(t *testing.T) {
	h := newHarness()
	m := h.model()
	m = drain(m, m.Init())
	if m.user != nil {
		t.Fatal("no user expected before login")
	}

	m = press(m, KeyLogin)

	if m.user == nil {
		t.Fatal("login should create a user")
	}
	if m.user.Subscription != domain.SubscriptionFreeTrial {
		t.Errorf("subscription = %q", m.user.Subscription)
	}
	if want := testNow.Add(subscription.TrialWindow); !m.user.TrialEndsAt.Equal(want) {
		t.Errorf("trialEndsAt = %v, want %v", m.user.TrialEndsAt, want)
	}
	if h.store.user == nil || h.store.user.Name != subscription.DefaultUserName {
		t.Errorf("persisted user = %+v", h.store.user)
	}
}

func TestLoginIgnoredBeforeSessionLoads(t *testing.T) {
	h := newHarness()
	m := press(h.model(), KeyLogin)
	if m.user != nil {
		t.Error("login before session load should be ignored")
	}
}

func TestConvertReport(t *testing.T) {
	h := newHarness()
	h.store.history = []domain.HistoryEntry{{ID: "old", OriginalName: "earlier.txt", FromFormat: ".txt", ToFormat: ".md"}}
	m := h.loggedIn(t)
	m = selectReport(t, m)

	if m.scan == nil || m.scan.Status != domain.ScanClean {
		t.Fatalf("scan = %+v, want clean", m.scan)
	}
	if m.Loading() {
		t.Error("should not be loading after analysis")
	}

	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	if !m.converting {
		t.Fatal("should be converting")
	}
	if m.loadingMessage != "Converting to PDF..." {
		t.Errorf("loadingMessage = %q", m.loadingMessage)
	}
	m = drain(m, cmd)

	payload, ok := h.saver.saved["report.pdf"]
	if !ok {
		t.Fatalf("saved = %v, want report.pdf", h.saver.saved)
	}
	if string(payload.Data) != "%PDF-1.7" {
		t.Errorf("payload = %q, want decoded bytes", payload.Data)
	}
	if payload.MimeType != "application/pdf" {
		t.Errorf("mimeType = %q", payload.MimeType)
	}

	if h.svc.scriptFormat != [2]string{"Word Document", "PDF"} {
		t.Errorf("script formats = %v", h.svc.scriptFormat)
	}
	if m.scripts["python"] == "" {
		t.Error("scripts should be shown after conversion")
	}

	if len(m.history) != 2 {
		t.Fatalf("history = %d entries, want 2", len(m.history))
	}
	got := m.history[0]
	if got.FromFormat != ".docx" || got.ToFormat != ".pdf" {
		t.Errorf("entry = %s → %s, want .docx → .pdf", got.FromFormat, got.ToFormat)
	}
	if got.OriginalName != "report.docx" || got.ID != "id-1" || !got.Timestamp.Equal(testNow) {
		t.Errorf("entry = %+v", got)
	}
	if m.history[1].ID != "old" {
		t.Errorf("history[1] = %q, want older entry last", m.history[1].ID)
	}
	if len(h.store.history) != 2 || h.store.history[0].ID != "id-1" {
		t.Errorf("persisted history = %+v", h.store.history)
	}
	if m.Loading() {
		t.Error("should not be loading after conversion")
	}
}

func TestScanFailure(t *testing.T) {
	h := newHarness()
	h.svc.scanErr = errors.New("scanner exploded")
	m := h.loggedIn(t)

	m, cmd := m.SelectFile(reportFile())
	if m.loadingMessage != msgScanning {
		t.Errorf("loadingMessage = %q, want %q", m.loadingMessage, msgScanning)
	}
	m = drain(m, cmd)

	if m.Loading() {
		t.Error("loading should be false after scan failure")
	}
	if m.errorMessage != msgProcessingFailed {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
	if m.analysis != nil {
		t.Error("no analysis expected after scan failure")
	}
	if len(h.svc.analyzed) != 0 {
		t.Error("analyze should not run after a failed scan")
	}
	if len(m.history) != 0 {
		t.Error("no history expected")
	}
}

func TestServiceUnavailableMessage(t *testing.T) {
	h := newHarness()
	h.svc.scanErr = fmt.Errorf("dial: %w", backend.ErrServiceUnavailable)
	m := h.loggedIn(t)

	m, cmd := m.SelectFile(reportFile())
	m = drain(m, cmd)

	if m.errorMessage != msgServiceUnavailable {
		t.Errorf("errorMessage = %q, want %q", m.errorMessage, msgServiceUnavailable)
	}
}

func TestAnalysisFailureKeepsScan(t *testing.T) {
	h := newHarness()
	h.svc.analyzeErr = errors.New("model refused")
	m := h.loggedIn(t)

	m, cmd := m.SelectFile(reportFile())
	m = drain(m, cmd)

	if m.scan == nil {
		t.Error("scan result should remain visible")
	}
	if m.analysis != nil {
		t.Error("analysis should be nil")
	}
	if m.errorMessage == "" || m.Loading() {
		t.Errorf("errorMessage = %q, loading = %v", m.errorMessage, m.Loading())
	}
}

func TestMalformedAnalysisIsFailure(t *testing.T) {
	h := newHarness()
	h.svc.analysis = domain.AnalysisResult{Kind: domain.AnalysisFile}
	m := h.loggedIn(t)

	m, cmd := m.SelectFile(reportFile())
	m = drain(m, cmd)

	if m.analysis != nil {
		t.Error("malformed analysis should not be stored")
	}
	if m.errorMessage != msgProcessingFailed {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
}

func TestStaleScanDiscarded(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	first := domain.NewFile("slow.txt", "text/plain", testNow, []byte("slow"))
	m, slowCmd := m.SelectFile(first)
	m, fastCmd := m.SelectFile(reportFile())

	// The slow scan lands after the second selection started.
	updated, cmd := m.Update(slowCmd())
	m = updated.(Model)
	if cmd != nil {
		t.Error("stale scan should not start analysis")
	}
	if m.scan != nil {
		t.Error("stale scan should be discarded")
	}
	if m.file.Name() != "report.docx" {
		t.Errorf("file = %q, want report.docx", m.file.Name())
	}
	if m.loadingMessage != msgScanning {
		t.Errorf("loadingMessage = %q", m.loadingMessage)
	}

	m = drain(m, fastCmd)
	if m.analysis == nil {
		t.Error("current selection should complete")
	}
}

func TestLateAnalysisOfReplacedFileDiscarded(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	first := domain.NewFile("first.txt", "text/plain", testNow, []byte("first"))
	m, scanCmd := m.SelectFile(first)
	updated, analyzeCmd := m.Update(scanCmd())
	m = updated.(Model)
	if analyzeCmd == nil {
		t.Fatal("scan should start analysis")
	}

	m, cmd := m.SelectFile(reportFile())
	m = drain(m, cmd)
	if m.analysis == nil || m.analysis.NativeFormat() != ".docx" {
		t.Fatalf("analysis = %+v, want .docx", m.analysis)
	}

	// The first file's analysis succeeds only now.
	h.svc.analysis = domain.NewImageAnalysis(domain.ImageAnalysis{Format: "STALE"})
	updated, cmd = m.Update(analyzeCmd())
	m = updated.(Model)
	if cmd != nil {
		t.Error("stale analysis should not schedule work")
	}
	if got := m.analysis.NativeFormat(); got != ".docx" {
		t.Errorf("analysis format = %q, want .docx", got)
	}
	if m.file.Name() != "report.docx" {
		t.Errorf("file = %q, want report.docx", m.file.Name())
	}
	if m.Loading() {
		t.Error("stale analysis should not change busy state")
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	m, _ = m.SelectFile(reportFile())
	stale := m.generation
	m, _ = m.SelectFile(reportFile())

	updated, _ := m.Update(AnalysisFailedMsg{Gen: stale, Err: errors.New("late")})
	m = updated.(Model)
	if m.errorMessage != "" {
		t.Errorf("stale failure set errorMessage = %q", m.errorMessage)
	}
	if !m.analyzing {
		t.Error("stale failure should not end the current pipeline")
	}
}

func TestResetKeepsUserAndHistory(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)
	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)

	user := *m.user
	history := len(m.history)

	m = press(m, KeyReset)

	if m.file != nil || m.analysis != nil || m.scan != nil || m.scripts != nil {
		t.Error("reset should clear the selection")
	}
	if m.errorMessage != "" || m.Loading() {
		t.Error("reset should clear error and loading")
	}
	if m.user == nil || m.user.Name != user.Name || m.user.Subscription != user.Subscription {
		t.Errorf("user = %+v, want %+v", m.user, user)
	}
	if len(m.history) != history {
		t.Errorf("history = %d, want %d", len(m.history), history)
	}
}

func TestResetDiscardsInFlightAnalysis(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	m, cmd := m.SelectFile(reportFile())
	m = m.Reset()
	m = drain(m, cmd)

	if m.scan != nil || m.analysis != nil {
		t.Error("results for a reset selection should be discarded")
	}
}

func TestLogoutLoginRestoresSession(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = press(m, KeyProfile, KeyNotifications, KeyEsc)
	m = selectReport(t, m)
	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)

	before := m.user.Clone()
	history := append([]domain.HistoryEntry(nil), m.history...)

	m = press(m, KeyProfile, KeyLogout)
	if m.user != nil {
		t.Fatal("logout should clear the user")
	}
	if h.store.userDeletes != 0 || h.store.user == nil {
		t.Error("logout must not delete the persisted user")
	}

	m = press(m, KeyLogin)
	if m.user == nil {
		t.Fatal("login should restore the user")
	}
	if m.user.Name != before.Name || m.user.Settings != before.Settings || !m.user.TrialEndsAt.Equal(*before.TrialEndsAt) {
		t.Errorf("user = %+v, want %+v", *m.user, before)
	}
	if len(m.history) != len(history) || m.history[0].ID != history[0].ID {
		t.Errorf("history = %+v, want %+v", m.history, history)
	}
}

func TestExpiredUserGate(t *testing.T) {
	h := newHarness()
	u := subscription.NewTrialUser(testNow.Add(-4 * 24 * time.Hour))
	h.store.user = &u
	m := h.model()
	m = drain(m, m.Init())

	m = press(m, KeyEsc)
	if !m.showGate || m.input != inputCode {
		t.Fatal("esc should not dismiss the gate")
	}

	m = press(m, "p")
	if m.showProfile {
		t.Error("profile should stay closed while gated")
	}

	m.inputValue = ""
	m = press(m, "WRONG", KeyEnter)
	if m.errorMessage != "Invalid activation code." {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
	if !m.showGate || m.input != inputCode {
		t.Error("gate should stay open after a wrong code")
	}
	if m.user.Subscription != domain.SubscriptionExpired {
		t.Errorf("subscription = %q", m.user.Subscription)
	}

	m = press(m, subscription.ActivationCode, KeyEnter)
	if m.showGate {
		t.Error("gate should close after activation")
	}
	if m.input != inputNone {
		t.Errorf("input = %d, want none", m.input)
	}
	if m.user.Subscription != domain.SubscriptionPro || m.user.TrialEndsAt != nil {
		t.Errorf("user = %+v, want Pro without trial end", *m.user)
	}
	if m.errorMessage != "" {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
	if h.store.user.Subscription != domain.SubscriptionPro {
		t.Errorf("persisted subscription = %q", h.store.user.Subscription)
	}
}

func TestUpgradeFromProfile(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	m = press(m, KeyProfile, KeyUpgrade)
	if m.input != inputCode {
		t.Fatalf("input = %d, want activation prompt", m.input)
	}
	m = press(m, KeyEsc)
	if m.input != inputNone {
		t.Error("esc should cancel a voluntary upgrade")
	}

	m = press(m, KeyUpgrade, subscription.ActivationCode, KeyEnter)
	if m.user.Subscription != domain.SubscriptionPro {
		t.Errorf("subscription = %q", m.user.Subscription)
	}
	if m.notice == "" {
		t.Error("activation should show a notice")
	}
}

func TestConversionBusyLock(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m, convert := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})

	m2, cmd := m.Convert(domain.ConversionSuggestion{Format: "Plain Text", Extension: ".txt"})
	if cmd != nil {
		t.Error("second conversion should be refused")
	}
	m2, cmd = m2.SelectFile(domain.NewFile("other.txt", "text/plain", testNow, []byte("x")))
	if cmd != nil || m2.file.Name() != "report.docx" {
		t.Error("selection should be refused while converting")
	}
	if m2.errorMessage == "" {
		t.Error("refused selection should explain why")
	}
	m2 = m2.Reset()
	if m2.file == nil || m2.analysis == nil {
		t.Error("reset should be refused while converting")
	}

	m2 = drain(m2, convert)
	if len(h.saver.saved) != 1 || len(m2.history) != 1 {
		t.Errorf("saved = %d, history = %d, want 1 each", len(h.saver.saved), len(m2.history))
	}
}

func TestConvertRequiresSuggestedTarget(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	if _, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"}); cmd != nil {
		t.Error("convert without analysis should be a no-op")
	}

	m = selectReport(t, m)
	if _, cmd := m.Convert(domain.ConversionSuggestion{Format: "EXE", Extension: ".exe"}); cmd != nil {
		t.Error("convert to an unsuggested format should be a no-op")
	}
}

func TestRenameChangesDownloadName(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m = press(m, KeyRename)
	if m.inputValue != "report.docx" {
		t.Errorf("rename prompt = %q, want current name", m.inputValue)
	}
	m.inputValue = ""
	m = press(m, "summary.docx", KeyEnter)

	if m.file.Name() != "summary.docx" {
		t.Fatalf("name = %q", m.file.Name())
	}
	if string(m.file.Bytes()) != string(reportFile().Bytes()) || m.file.MimeType() != reportFile().MimeType() {
		t.Error("rename should keep content and type")
	}

	m = press(m, KeyEnter)
	if _, ok := h.saver.saved["summary.pdf"]; !ok {
		t.Errorf("saved = %v, want summary.pdf", h.saver.saved)
	}
	if m.history[0].OriginalName != "summary.docx" {
		t.Errorf("originalName = %q", m.history[0].OriginalName)
	}
}

func TestRenameRejectsPaths(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	for _, name := range []string{"", "  ", "../evil.docx", "dir/x.docx"} {
		if got := m.Rename(name).file.Name(); got != "report.docx" {
			t.Errorf("Rename(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestConversionFailure(t *testing.T) {
	h := newHarness()
	h.svc.convertErr = errors.New("unsupported codec")
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)

	if !strings.Contains(m.errorMessage, "unsupported codec") {
		t.Errorf("errorMessage = %q, want the cause", m.errorMessage)
	}
	if m.Loading() {
		t.Error("loading should be false")
	}
	if len(m.history) != 0 || len(h.store.history) != 0 {
		t.Error("failed conversion must not add history")
	}
	if len(h.saver.saved) != 0 {
		t.Error("failed conversion must not save a file")
	}
}

func TestScriptFailureFailsConversion(t *testing.T) {
	h := newHarness()
	h.svc.scriptsErr = errors.New("no scripts today")
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)

	if !strings.Contains(m.errorMessage, "no scripts today") {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
	if len(m.history) != 0 || len(h.saver.saved) != 0 {
		t.Error("no history or download expected")
	}
}

func TestBadBinaryContentFailsConversion(t *testing.T) {
	h := newHarness()
	h.svc.conversion = domain.ConversionResult{Content: "not base64!", IsBinary: true}
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)

	if m.errorMessage == "" || len(m.history) != 0 {
		t.Errorf("errorMessage = %q, history = %d", m.errorMessage, len(m.history))
	}
}

func TestToggleSettings(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	m = press(m, KeyProfile, KeyDarkMode)
	if m.user.Settings.DarkMode || m.theme.Dark {
		t.Error("dark mode should be off")
	}
	if h.store.user.Settings.DarkMode {
		t.Error("dark mode change should be persisted")
	}

	m = press(m, KeyNotifications)
	if !m.user.Settings.Notifications || !h.store.user.Settings.Notifications {
		t.Error("notifications should be on and persisted")
	}
	if !m.showProfile {
		t.Error("profile should stay open while toggling")
	}
}

func TestConversionNotice(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m, cmd := m.Convert(domain.ConversionSuggestion{Format: "PDF", Extension: ".pdf"})
	m = drain(m, cmd)
	if m.notice != "" {
		t.Errorf("notice = %q with notifications off", m.notice)
	}

	m = press(m, KeyProfile, KeyNotifications, KeyEsc)
	m, cmd = m.Convert(domain.ConversionSuggestion{Format: "Plain Text", Extension: ".txt"})
	m = drain(m, cmd)
	if m.notice != "Saved /downloads/report.txt" {
		t.Errorf("notice = %q", m.notice)
	}

	updated, _ := m.Update(ClearNoticeMsg{Seq: m.noticeSeq})
	if got := updated.(Model).notice; got != "" {
		t.Errorf("notice after clear = %q", got)
	}
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness()
	h.store.history = []domain.HistoryEntry{{ID: "h1"}}
	m := h.loggedIn(t)

	m = press(m, KeyProfile, KeyDeleteAccount)

	if m.user != nil {
		t.Error("user should be cleared")
	}
	if h.store.userDeletes != 1 || h.store.user != nil {
		t.Errorf("userDeletes = %d, want 1", h.store.userDeletes)
	}
	if len(h.store.history) != 1 {
		t.Error("history should be kept")
	}

	m = press(m, KeyLogin)
	if m.user == nil || m.user.Subscription != domain.SubscriptionFreeTrial {
		t.Error("login after deletion should start a new trial")
	}
}

func TestSuggestionNavigation(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	m = press(m, KeyPrev)
	if m.selectedSuggestion != 0 {
		t.Errorf("selectedSuggestion = %d, want 0", m.selectedSuggestion)
	}
	m = press(m, KeyNext, KeyNext, KeyNext)
	if m.selectedSuggestion != 1 {
		t.Errorf("selectedSuggestion = %d, want 1", m.selectedSuggestion)
	}

	m = press(m, KeyEnter)
	if _, ok := h.saver.saved["report.txt"]; !ok {
		t.Errorf("saved = %v, want report.txt", h.saver.saved)
	}
}

func TestOpenFilePrompt(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)

	m = press(m, KeyOpen)
	if m.input != inputPath {
		t.Fatalf("input = %d, want path prompt", m.input)
	}
	m = press(m, "/does/not/exist.txt", KeyEnter)
	if !strings.Contains(m.errorMessage, "/does/not/exist.txt") {
		t.Errorf("errorMessage = %q", m.errorMessage)
	}
	if m.file != nil {
		t.Error("no file expected")
	}
}

func TestKeysIgnoredWhenLoggedOut(t *testing.T) {
	h := newHarness()
	m := h.model()
	m = drain(m, m.Init())

	m = press(m, KeyOpen, KeyProfile)
	if m.input != inputNone || m.showProfile {
		t.Error("logged-out keys other than login should be ignored")
	}
}

func TestViewRendersWithSize(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = selectReport(t, m)

	view := m.View()
	for _, want := range []string{"FILEFORGE", "report.docx", "CLEAN", "CONVERT TO (2)", "PDF (.pdf)", "HISTORY (0)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewGate(t *testing.T) {
	h := newHarness()
	u := subscription.NewTrialUser(testNow.Add(-4 * 24 * time.Hour))
	h.store.user = &u
	m := h.model()
	m = drain(m, m.Init())

	view := m.View()
	if !strings.Contains(view, "Activation code") || !strings.Contains(view, "EXPIRED") {
		t.Errorf("gate view = %q", view)
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := newHarness().model()
	m.width = 0
	if view := m.View(); view != "Initializing..." {
		t.Errorf("view = %q, want %q", view, "Initializing...")
	}
}

func TestCtrlCQuits(t *testing.T) {
	h := newHarness()
	m := h.loggedIn(t)
	m = press(m, KeyOpen)

	_, cmd := m.Update(key(KeyCtrlC))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit even with a prompt open")
	}
}
