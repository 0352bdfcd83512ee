package app

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/fileforge/internal/domain"
)

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	// Header
	sections = append(sections, m.renderHeader())

	// Divider
	sections = append(sections, m.theme.Divider.Render(strings.Repeat("─", m.width)))

	// Main content: modal, welcome or file | output
	switch {
	case m.user == nil:
		sections = append(sections, m.renderWelcome())
	case m.showGate:
		sections = append(sections, m.renderGate())
	case m.showProfile:
		sections = append(sections, m.renderProfile())
	default:
		sections = append(sections, m.renderMainContent())
	}

	// Divider
	sections = append(sections, m.theme.Divider.Render(strings.Repeat("─", m.width)))

	// Status bars
	if m.Loading() {
		sections = append(sections, m.theme.Spinner.Render("⟳ "+m.loadingMessage))
	}
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}
	if m.notice != "" {
		sections = append(sections, m.theme.Notice.Render(m.notice))
	}
	if m.input != inputNone {
		sections = append(sections, m.renderInput())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("FILEFORGE")
	if m.user == nil {
		return title
	}
	return title + m.theme.Dim.Render(" — "+m.user.Name) + "  " + m.renderBadge()
}

func (m Model) renderBadge() string {
	u := m.user
	switch u.Subscription {
	case domain.SubscriptionPro:
		return m.theme.Badge.Render("[PRO]")
	case domain.SubscriptionExpired:
		return m.theme.ExpiredBadge.Render("[EXPIRED]")
	}
	badge := m.theme.Badge.Render("[TRIAL]")
	if u.TrialEndsAt != nil {
		left := u.TrialEndsAt.Sub(m.now())
		days := int(left.Hours()/24) + 1
		if left <= 0 {
			days = 0
		}
		badge += m.theme.Dim.Render(fmt.Sprintf(" %dd left", days))
	}
	return badge
}

func (m Model) contentHeight() int {
	// header, two dividers, footer and room for status bars
	h := m.height - 7
	if h < 8 {
		h = 8
	}
	return h
}

func (m Model) renderMainContent() string {
	leftW := m.width / 2
	if leftW < 30 {
		leftW = 30
	}
	rightW := max(10, m.width-leftW-1)
	contentH := m.contentHeight()

	left := strings.Split(m.renderFilePanel(leftW, contentH), "\n")
	right := strings.Split(m.renderOutputPanel(rightW, contentH), "\n")
	divider := m.theme.Divider.Render("│")

	rows := make([]string, 0, contentH)
	for i := 0; i < contentH; i++ {
		l := strings.Repeat(" ", leftW)
		if i < len(left) {
			l = padRight(left[i], leftW)
		}
		r := ""
		if i < len(right) {
			r = right[i]
		}
		rows = append(rows, l+divider+r)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderFilePanel(width, height int) string {
	var lines []string
	lines = append(lines, m.theme.PanelTitle.Render("FILE"))

	if m.file == nil {
		lines = append(lines, "")
		lines = append(lines, m.theme.Dim.Render("  No file selected"))
		lines = append(lines, m.theme.Dim.Render("  Press o to open a file"))
		return fitLines(lines, width, height)
	}

	f := m.file
	lines = append(lines, truncateToWidth("  "+f.Name(), width))
	lines = append(lines, m.theme.Dim.Render(truncateToWidth(fmt.Sprintf("  %s · %s", f.MimeType(), formatSize(f.Size())), width)))

	// Scan
	if m.scan != nil {
		lines = append(lines, "")
		if m.scan.Status == domain.ScanThreatFound {
			lines = append(lines, "  "+m.theme.Threat.Render("✗ THREAT: "+m.scan.ThreatName))
		} else {
			lines = append(lines, "  "+m.theme.Clean.Render("✓ CLEAN"))
		}
		if m.scan.EngineVersion != "" {
			lines = append(lines, m.theme.Dim.Render("  "+m.scan.EngineVersion))
		}
	}

	if m.analysis == nil {
		return fitLines(lines, width, height)
	}

	// Analysis
	a := m.analysis
	lines = append(lines, "")
	lines = append(lines, m.theme.PanelTitle.Render("ANALYSIS")+m.theme.Dim.Render(" "+a.NativeFormat()))
	for _, wl := range wrapText(a.Description(), max(10, width-4)) {
		lines = append(lines, "  "+wl)
	}
	switch a.Kind {
	case domain.AnalysisFile:
		lines = appendList(lines, m.theme.Dim.Render("  Uses:"), a.File.CommonUses, width)
		lines = appendList(lines, m.theme.ErrorText.Render("  Risks:"), a.File.PotentialRisks, width)
	case domain.AnalysisImage:
		if len(a.Image.Tags) > 0 {
			lines = append(lines, m.theme.Dim.Render(truncateToWidth("  Tags: "+strings.Join(a.Image.Tags, ", "), width)))
		}
		lines = appendList(lines, m.theme.Dim.Render("  Edits:"), a.Image.EditSuggestions, width)
	}

	// Suggestions
	lines = append(lines, "")
	suggestions := a.Suggestions()
	lines = append(lines, m.theme.PanelTitle.Render(fmt.Sprintf("CONVERT TO (%d)", len(suggestions))))
	for i, s := range suggestions {
		label := fmt.Sprintf("%s (%s)", s.Format, s.Extension)
		if i == m.selectedSuggestion {
			lines = append(lines, m.theme.Selected.Render(truncateToWidth("> "+label, width)))
		} else {
			lines = append(lines, truncateToWidth("  "+label, width))
		}
	}

	return fitLines(lines, width, height)
}

func (m Model) renderOutputPanel(width, height int) string {
	var lines []string

	if len(m.scripts) > 0 {
		lines = append(lines, m.theme.PanelTitle.Render("SCRIPTS"))
		for _, lang := range slices.Sorted(maps.Keys(m.scripts)) {
			lines = append(lines, " "+m.theme.Selected.Render(lang))
			for _, sl := range strings.Split(strings.TrimRight(m.scripts[lang], "\n"), "\n") {
				lines = append(lines, truncateToWidth("   "+sl, width))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, m.theme.PanelTitle.Render(fmt.Sprintf("HISTORY (%d)", len(m.history))))
	if len(m.history) == 0 {
		lines = append(lines, m.theme.Dim.Render("  No conversions yet"))
	}
	for _, e := range m.history {
		ts := m.theme.Timestamp.Render(e.Timestamp.Local().Format("[01-02 15:04]"))
		lines = append(lines, truncateToWidth(fmt.Sprintf(" %s %s %s → %s", ts, e.OriginalName, e.FromFormat, e.ToFormat), width))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderWelcome() string {
	var body string
	if !m.sessionLoaded {
		body = m.theme.Dim.Render("Loading session...")
	} else {
		body = m.theme.ModalTitle.Render("Welcome to FileForge") + "\n\n" +
			"Scan, analyze and convert files.\n\n" +
			m.theme.Dim.Render("Press l to log in. New accounts start a 3 day free trial.")
	}
	return m.place(m.theme.Modal.Render(body))
}

func (m Model) renderGate() string {
	body := m.theme.ModalTitle.Render("Your free trial has ended") + "\n\n" +
		"Enter an activation code to upgrade to Pro\nand keep converting files.\n\n" +
		m.theme.Dim.Render("Type the code below and press Enter.")
	return m.place(m.theme.Modal.Render(body))
}

func (m Model) renderProfile() string {
	u := m.user
	var b strings.Builder
	b.WriteString(m.theme.ModalTitle.Render("PROFILE"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Name:          %s\n", u.Name)
	fmt.Fprintf(&b, "Subscription:  %s\n", m.renderBadge())
	if u.TrialEndsAt != nil {
		fmt.Fprintf(&b, "Trial ends:    %s\n", u.TrialEndsAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s Dark mode      %s\n", m.theme.FooterKey.Render("d"), onOff(u.Settings.DarkMode))
	fmt.Fprintf(&b, "%s Notifications  %s\n", m.theme.FooterKey.Render("n"), onOff(u.Settings.Notifications))
	if u.Subscription != domain.SubscriptionPro {
		fmt.Fprintf(&b, "%s Upgrade to Pro\n", m.theme.FooterKey.Render("u"))
	}
	fmt.Fprintf(&b, "%s Log out\n", m.theme.FooterKey.Render("l"))
	fmt.Fprintf(&b, "%s Delete account", m.theme.FooterKey.Render("X"))
	return m.place(m.theme.Modal.Render(b.String()))
}

func (m Model) place(s string) string {
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderInput() string {
	var label string
	switch m.input {
	case inputPath:
		label = "Open file: "
	case inputRename:
		label = "Rename to: "
	case inputCode:
		label = "Activation code: "
	}
	return m.theme.Input.Render(label) + m.inputValue + "▌"
}

func (m Model) renderErrorBar() string {
	return m.theme.Error.Render("Error: ") + m.theme.ErrorText.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return m.theme.FooterKey.Render(k) + m.theme.FooterDesc.Render(" "+desc)
	}

	var parts []string
	switch {
	case m.input != inputNone:
		parts = append(parts, key("Enter", "Submit"))
		if !(m.input == inputCode && m.showGate) {
			parts = append(parts, key("Esc", "Cancel"))
		}
		parts = append(parts, key("ctrl+c", "Quit"))
		return strings.Join(parts, "  ")
	case m.user == nil:
		parts = append(parts, key("l", "Log in"))
	case m.showProfile:
		parts = append(parts, key("Esc", "Close"))
	default:
		parts = append(parts, key("o", "Open"))
		if m.file != nil {
			parts = append(parts, key("r", "Rename"))
			parts = append(parts, key("x", "Reset"))
		}
		if len(m.suggestions()) > 0 {
			parts = append(parts, key("j/k", "Nav"))
			parts = append(parts, key("Enter", "Convert"))
		}
		parts = append(parts, key("p", "Profile"))
	}
	parts = append(parts, key("q", "Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func appendList(lines []string, heading string, items []string, width int) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, heading)
	for _, item := range items {
		for i, wl := range wrapText(item, max(10, width-6)) {
			prefix := "    "
			if i == 0 {
				prefix = "  • "
			}
			lines = append(lines, prefix+wl)
		}
	}
	return lines
}

func fitLines(lines []string, width, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}
	return strings.Join(lines, "\n")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
