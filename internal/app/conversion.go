package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/download"

	tea "github.com/charmbracelet/bubbletea"
)

// Convert converts the selected file to target, one of the suggestions of
// the current analysis. Script generation and conversion run concurrently;
// the file is saved only when both succeed.
func (m Model) Convert(target domain.ConversionSuggestion) (Model, tea.Cmd) {
	if m.file == nil || m.analysis == nil || m.Loading() {
		return m, nil
	}
	if !hasSuggestion(m.analysis.Suggestions(), target) {
		m.log.Warn().Str("format", target.Format).Msg("conversion target not suggested")
		return m, nil
	}

	m.converting = true
	m.scripts = nil
	m.errorMessage = ""
	m.loadingMessage = fmt.Sprintf("Converting to %s...", target.Format)

	m.log.Info().
		Str("file", m.file.Name()).
		Str("from", m.analysis.NativeFormat()).
		Str("to", target.Format).
		Msg("conversion started")

	return m, convertCmd(m.svc, m.saver, m.generation, *m.file, *m.analysis, target)
}

func (m Model) handleConversionCompleted(msg ConversionCompletedMsg) (tea.Model, tea.Cmd) {
	m.converting = false
	m.loadingMessage = ""
	if msg.Gen == m.generation {
		m.scripts = msg.Scripts
	}

	entry := domain.HistoryEntry{
		ID:           m.newID(),
		OriginalName: msg.OriginalName,
		FromFormat:   msg.FromFormat,
		ToFormat:     msg.Target.Extension,
		Timestamp:    m.now(),
	}
	m.history = append([]domain.HistoryEntry{entry}, m.history...)
	m.log.Info().Str("file", msg.OriginalName).Str("path", msg.Path).Msg("conversion saved")

	cmds := []tea.Cmd{saveHistoryCmd(m.store, m.history)}
	if m.user != nil && m.user.Settings.Notifications {
		var notice tea.Cmd
		m, notice = m.setNotice("Saved " + msg.Path)
		cmds = append(cmds, notice)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleConversionFailed(msg ConversionFailedMsg) (tea.Model, tea.Cmd) {
	m.converting = false
	m.loadingMessage = ""
	m.log.Error().Err(msg.Err).Uint64("gen", msg.Gen).Msg("conversion failed")
	m.errorMessage = "Conversion failed: " + msg.Err.Error()
	return m, nil
}

func hasSuggestion(suggestions []domain.ConversionSuggestion, target domain.ConversionSuggestion) bool {
	for _, s := range suggestions {
		if s == target {
			return true
		}
	}
	return false
}

// convertCmd generates scripts and converts f in parallel, then saves the
// materialized result under the original base name and target extension.
func convertCmd(svc Service, saver Saver, gen uint64, f domain.File, analysis domain.AnalysisResult, target domain.ConversionSuggestion) tea.Cmd {
	return func() tea.Msg {
		var (
			scripts map[string]string
			result  domain.ConversionResult
		)

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			scripts, err = svc.GenerateScripts(ctx, analysis.SourceFormat(), target.Format)
			if err != nil {
				return fmt.Errorf("generate scripts: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			result, err = svc.Convert(ctx, f, target.Format)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return ConversionFailedMsg{Gen: gen, Err: err}
		}

		payload, err := download.Materialize(result)
		if err != nil {
			return ConversionFailedMsg{Gen: gen, Err: err}
		}
		path, err := saver.Save(download.FileName(f.Name(), target.Extension), payload)
		if err != nil {
			return ConversionFailedMsg{Gen: gen, Err: fmt.Errorf("save: %w", err)}
		}

		return ConversionCompletedMsg{
			Gen:          gen,
			OriginalName: f.Name(),
			FromFormat:   analysis.NativeFormat(),
			Target:       target,
			Scripts:      scripts,
			Path:         path,
		}
	}
}
