package tui

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/gavel/internal/session"
)

const (
	logTailLines   = 6
	excerptRunes   = 600
	argumentRunes  = 280
	fallbackWidth  = 100
	minPanelWidth  = 20
	recordMaxLines = 30
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	speakerText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = fallbackWidth
	}
	inner := max(minPanelWidth, width-4)

	var content string
	switch a.state {
	case statePickFile:
		content = a.renderPicker()
	default:
		content = a.renderWorkflow(inner)
	}

	sections := []string{
		headerStyle.Render("⚖ GAVEL"),
		panelStyle.Width(max(minPanelWidth, width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				a.renderStagePanel(inner),
				"",
				content,
			),
		),
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(a.renderFooter()))
	return strings.Join(sections, "\n")
}

func (a *App) renderStagePanel(width int) string {
	stage := a.sess.Stage
	pos, total := stagePosition(stage)
	lines := []string{
		fmt.Sprintf("Stage: %s (%d/%d)", stage.FriendlyName(), pos+1, total),
	}
	if upcoming := upcomingStages(stage); len(upcoming) > 0 {
		names := make([]string, 0, len(upcoming))
		for _, s := range upcoming {
			names = append(names, s.String())
		}
		lines = append(lines, fmt.Sprintf("Next: %s", strings.Join(names, " → ")))
	}
	caseLine := "Case: none"
	if a.sess.CaseID != "" {
		caseLine = fmt.Sprintf("Case: %s", a.sess.CaseID)
	}
	lines = append(lines, fmt.Sprintf("%s · run %s", caseLine, shortID(a.sess.RunID)))
	backendLine := fmt.Sprintf("Backend: %s", a.cfg.BackendURL())
	if a.backendErr != "" {
		backendLine += warnStyle.Render(" · unreachable: " + a.backendErr)
	}
	lines = append(lines, backendLine)
	return lipgloss.NewStyle().Width(max(minPanelWidth, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderPicker() string {
	hint := hintStyle.Render("Enter → select document    Esc → cancel")
	return lipgloss.JoinVertical(lipgloss.Left, a.picker.View(), hint)
}

func (a *App) renderWorkflow(width int) string {
	var body string
	if a.showRecord {
		body = a.renderRecord()
	} else {
		body = a.renderResults(width)
	}
	hints := hintStyle.Render(a.stageHints())
	return lipgloss.JoinVertical(lipgloss.Left, body, "", hints)
}

func (a *App) renderResults(width int) string {
	switch a.sess.Stage {
	case session.StageUpload:
		if a.sess.SelectedFile == "" {
			return dimStyle.Render("No document selected. Press f to browse for a .pdf or .txt case file.")
		}
		return fmt.Sprintf("Selected document: %s\n%s",
			filepath.Base(a.sess.SelectedFile),
			dimStyle.Render("Press u to upload it for analysis."))
	case session.StageProcess:
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Extracted Text"),
			truncateRunes(a.sess.RawText, excerptRunes),
			"",
			dimStyle.Render("Press p to extract facts, issues, and holding."),
		)
	case session.StageProcessed:
		sections := []string{a.renderDetails()}
		if a.sess.Prediction != nil {
			sections = append(sections, "", a.renderPrediction())
		}
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	case session.StageSimulated:
		return lipgloss.JoinVertical(lipgloss.Left,
			a.renderTranscript(width),
			"",
			a.renderVerdict(),
		)
	case session.StageAudited:
		return lipgloss.JoinVertical(lipgloss.Left,
			a.renderVerdict(),
			"",
			a.renderAudit(),
		)
	}
	return ""
}

func (a *App) renderDetails() string {
	details := a.sess.Details
	if details == nil {
		return dimStyle.Render("No case details yet.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Case Details"),
		fmt.Sprintf("Facts:   %s", truncateRunes(details.Facts, excerptRunes)),
		fmt.Sprintf("Issues:  %s", truncateRunes(details.Issues, excerptRunes)),
		fmt.Sprintf("Holding: %s", truncateRunes(details.Holding, excerptRunes)),
	)
}

func (a *App) renderPrediction() string {
	p := a.sess.Prediction
	if p == nil {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Baseline Prediction"),
		fmt.Sprintf("%s · %.0f%% confidence · %s", p.Label, p.Confidence, p.Method),
	)
}

func (a *App) renderTranscript(width int) string {
	sim := a.sess.Simulation
	if sim == nil {
		return dimStyle.Render("No simulation yet.")
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Debate Transcript · %d round(s)", sim.RoundsCompleted)),
	}
	for _, turn := range sim.Transcript {
		speaker := speakerText.Render(fmt.Sprintf("R%d %s:", turn.Round, turn.Speaker))
		lines = append(lines, fmt.Sprintf("%s %s", speaker, truncateRunes(turn.Argument, argumentRunes)))
	}
	return lipgloss.NewStyle().Width(max(minPanelWidth, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderVerdict() string {
	sim := a.sess.Simulation
	if sim == nil {
		return dimStyle.Render("No verdict yet.")
	}
	verdict := sim.Verdict
	lines := []string{
		titleStyle.Render("Verdict"),
		okStyle.Render(fmt.Sprintf("%s · %.0f%% confidence", verdict.Verdict, verdict.Confidence)),
	}
	// Reasoning and evidence are optional; absence means nothing to show.
	for _, reason := range verdict.Reasoning {
		lines = append(lines, fmt.Sprintf("  • %s", reason))
	}
	if len(verdict.SupportingEvidence) > 0 {
		lines = append(lines, dimStyle.Render("Evidence:"))
		for _, ev := range verdict.SupportingEvidence {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  • %s", ev)))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderAudit() string {
	audit := a.sess.Audit
	if audit == nil {
		return dimStyle.Render("No audit yet.")
	}
	lines := []string{
		titleStyle.Render("Bias Audit"),
		fmt.Sprintf("Fairness score: %.0f/100", audit.FairnessScore),
	}
	if len(audit.BiasedTerms) > 0 {
		lines = append(lines, fmt.Sprintf("Biased terms: %s", strings.Join(audit.BiasedTerms, ", ")))
	}
	if len(audit.BiasTypes) > 0 {
		lines = append(lines, fmt.Sprintf("Bias categories: %s", strings.Join(audit.BiasTypes, ", ")))
	}
	for _, rec := range audit.Recommendations {
		lines = append(lines, fmt.Sprintf("  • %s", rec))
	}
	if audit.Summary != "" {
		lines = append(lines, dimStyle.Render(audit.Summary))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRecord() string {
	data, err := json.MarshalIndent(a.record, "", "  ")
	if err != nil {
		return dimStyle.Render(fmt.Sprintf("cannot render case record: %v", err))
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > recordMaxLines {
		lines = append(lines[:recordMaxLines], dimStyle.Render("…"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Server Case Record"),
		strings.Join(lines, "\n"),
	)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	if a.inFlight != "" {
		return fmt.Sprintf("%s %s", a.spin.View(), a.statusMsg)
	}
	return a.statusMsg
}

// stageHints lists the keys that do something at the current stage.
func (a *App) stageHints() string {
	var hints []string
	switch a.sess.Stage {
	case session.StageUpload:
		hints = []string{"f=choose document", "u=upload"}
	case session.StageProcess:
		hints = []string{"p=extract details"}
	case session.StageProcessed:
		hints = []string{"b=baseline prediction", "s=simulate debate"}
	case session.StageSimulated:
		hints = []string{"s=re-run simulation", "a=bias audit"}
	case session.StageAudited:
		hints = []string{}
	}
	if a.sess.CaseID != "" {
		hints = append(hints, "c=case record")
	}
	hints = append(hints, "r=reset", "q=quit")
	return strings.Join(hints, "  ")
}

func stagePosition(s session.Stage) (int, int) {
	for i, stage := range stageOrder {
		if s == stage {
			return i, len(stageOrder)
		}
	}
	return len(stageOrder), len(stageOrder)
}

func upcomingStages(s session.Stage) []session.Stage {
	pos, _ := stagePosition(s)
	if pos+1 >= len(stageOrder) {
		return nil
	}
	return stageOrder[pos+1:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
