package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwulff/fileforge/internal/backend"
	"github.com/jwulff/fileforge/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// User-facing analysis messages. The underlying cause goes to the log only.
const (
	msgScanning           = "Scanning for threats..."
	msgProcessingFailed   = "Processing failed. The service may be unavailable; select the file again to retry."
	msgServiceUnavailable = "Service unavailable. Check that the conversion service is running and select the file again."
)

// SelectFile starts the scan → analyze pipeline for f. It supersedes any
// pending selection. Refused while a conversion is running.
func (m Model) SelectFile(f domain.File) (Model, tea.Cmd) {
	if m.converting {
		m.errorMessage = "A conversion is in progress. Wait for it to finish before selecting another file."
		return m, nil
	}

	m.generation++
	m.file = &f
	m.scan = nil
	m.analysis = nil
	m.scripts = nil
	m.errorMessage = ""
	m.selectedSuggestion = 0
	m.analyzing = true
	m.loadingMessage = msgScanning

	m.log.Debug().Uint64("gen", m.generation).Str("file", f.Name()).Int("size", f.Size()).Msg("file selected")
	return m, scanCmd(m.svc, m.generation, f)
}

func (m Model) handleScanCompleted(msg ScanCompletedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	result := msg.Result
	m.scan = &result
	m.loadingMessage = fmt.Sprintf("Analyzing %s...", m.file.Name())
	if result.Status == domain.ScanThreatFound {
		m.log.Warn().Str("file", m.file.Name()).Str("threat", result.ThreatName).Msg("threat found")
	}
	return m, analyzeCmd(m.svc, msg.Gen, *m.file, result.Status)
}

func (m Model) handleScanFailed(msg ScanFailedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	m.log.Error().Err(msg.Err).Str("file", m.file.Name()).Msg("scan failed")
	return m.failAnalysis(msg.Err), nil
}

func (m Model) handleAnalysisCompleted(msg AnalysisCompletedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	if !msg.Result.Valid() {
		err := fmt.Errorf("malformed %q analysis result", msg.Result.Kind)
		m.log.Error().Err(err).Str("file", m.file.Name()).Msg("analysis failed")
		return m.failAnalysis(err), nil
	}
	result := msg.Result
	m.analysis = &result
	m.analyzing = false
	m.loadingMessage = ""
	return m, nil
}

func (m Model) handleAnalysisFailed(msg AnalysisFailedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	m.log.Error().Err(msg.Err).Str("file", m.file.Name()).Msg("analysis failed")
	return m.failAnalysis(msg.Err), nil
}

// failAnalysis ends the pipeline, keeping whatever partial results exist.
func (m Model) failAnalysis(err error) Model {
	m.analyzing = false
	m.loadingMessage = ""
	if errors.Is(err, backend.ErrServiceUnavailable) {
		m.errorMessage = msgServiceUnavailable
	} else {
		m.errorMessage = msgProcessingFailed
	}
	return m
}

// stale reports whether a result belongs to a superseded selection.
func (m Model) stale(gen uint64) bool {
	if gen != m.generation || m.file == nil {
		m.log.Debug().Uint64("gen", gen).Uint64("current", m.generation).Msg("discarding stale result")
		return true
	}
	return false
}

// scanCmd scans the file for selection gen.
func scanCmd(svc Service, gen uint64, f domain.File) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Scan(context.Background(), f)
		if err != nil {
			return ScanFailedMsg{Gen: gen, Err: err}
		}
		return ScanCompletedMsg{Gen: gen, Result: result}
	}
}

// analyzeCmd analyzes the file for selection gen.
func analyzeCmd(svc Service, gen uint64, f domain.File, status domain.ScanStatus) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Analyze(context.Background(), f, status)
		if err != nil {
			return AnalysisFailedMsg{Gen: gen, Err: err}
		}
		return AnalysisCompletedMsg{Gen: gen, Result: result}
	}
}

// loadFileCmd reads a file from disk.
func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := domain.ReadFile(path)
		if err != nil {
			return FileLoadErrorMsg{Path: path, Err: err}
		}
		return FileLoadedMsg{File: f}
	}
}
