package tui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/gavel/internal/api"
	"github.com/yourusername/gavel/internal/config"
	"github.com/yourusername/gavel/internal/session"
)

func TestUploadKeyAdvancesStage(t *testing.T) {
	ctl := session.NewController(&stubBackend{}, nil)
	app := newTestApp(t, ctl)
	selectTempDoc(t, ctl, "case.pdf")
	app.sess = ctl.Snapshot()

	model, cmd := app.Update(keyMsg("u"))
	app = runCommands(t, model, cmd)

	if got := app.sess.Stage; got != session.StageProcess {
		t.Fatalf("stage = %s, want %s", got, session.StageProcess)
	}
	if app.inFlight != "" {
		t.Fatalf("inFlight = %q, want cleared", app.inFlight)
	}
	if !strings.Contains(app.statusMsg, "abc123") {
		t.Fatalf("status %q should mention the new case id", app.statusMsg)
	}
}

func TestUploadWithoutFileShowsNotification(t *testing.T) {
	backend := &stubBackend{}
	ctl := session.NewController(backend, nil)
	app := newTestApp(t, ctl)

	model, cmd := app.Update(keyMsg("u"))
	app = runCommands(t, model, cmd)

	if got := app.sess.Stage; got != session.StageUpload {
		t.Fatalf("stage = %s, want %s", got, session.StageUpload)
	}
	if !strings.Contains(app.statusMsg, "no document selected") {
		t.Fatalf("status = %q, want the local precondition error", app.statusMsg)
	}
	if backend.uploads != 0 {
		t.Fatalf("no request may be sent without a file")
	}
}

func TestOperationKeysRefusedWhileBusy(t *testing.T) {
	ctl := session.NewController(&stubBackend{}, nil)
	app := newTestApp(t, ctl)
	app.inFlight = opUpload

	model, cmd := app.Update(keyMsg("p"))
	app = asApp(t, model)
	if cmd != nil {
		t.Fatalf("expected no command while busy")
	}
	if !strings.Contains(app.statusMsg, "one operation at a time") {
		t.Fatalf("status = %q, want busy hint", app.statusMsg)
	}
}

func TestAuditFailureShowsServerDetail(t *testing.T) {
	backend := &stubBackend{
		auditErr: &api.APIError{Status: 400, Detail: "case not finalized"},
	}
	ctl := session.NewController(backend, nil)
	driveToSimulated(t, ctl)
	app := newTestApp(t, ctl)

	model, cmd := app.Update(keyMsg("a"))
	app = runCommands(t, model, cmd)

	if got := app.sess.Stage; got != session.StageSimulated {
		t.Fatalf("stage = %s, want %s", got, session.StageSimulated)
	}
	if app.sess.Audit != nil {
		t.Fatalf("audit must remain unset after failure")
	}
	if app.statusMsg != "case not finalized" {
		t.Fatalf("status = %q, want the server detail verbatim", app.statusMsg)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	ctl := session.NewController(&stubBackend{}, nil)
	driveToSimulated(t, ctl)
	app := newTestApp(t, ctl)
	before := app.sess

	model, cmd := app.Update(keyMsg("r"))
	app = runCommands(t, model, cmd)
	if app.sess.Stage != before.Stage {
		t.Fatalf("first r must not reset, stage = %s", app.sess.Stage)
	}
	if !app.confirmReset {
		t.Fatalf("first r should arm the confirmation")
	}

	// Any other key disarms it.
	model, cmd = app.Update(keyMsg("x"))
	app = runCommands(t, model, cmd)
	if app.confirmReset {
		t.Fatalf("unrelated key must disarm reset confirmation")
	}

	model, cmd = app.Update(keyMsg("r"))
	app = runCommands(t, model, cmd)
	model, cmd = app.Update(keyMsg("r"))
	app = runCommands(t, model, cmd)
	if app.sess.Stage != session.StageUpload {
		t.Fatalf("double r must reset, stage = %s", app.sess.Stage)
	}
	if app.sess.RunID == before.RunID {
		t.Fatalf("reset must mint a fresh run id")
	}
}

func TestFileKeyOpensPickerOnlyBeforeUpload(t *testing.T) {
	ctl := session.NewController(&stubBackend{}, nil)
	app := newTestApp(t, ctl)

	model, _ := app.Update(keyMsg("f"))
	app = asApp(t, model)
	if app.state != statePickFile {
		t.Fatalf("f should open the picker at the upload stage")
	}
	for _, ext := range []string{".pdf", ".txt"} {
		found := false
		for _, allowed := range app.picker.AllowedTypes {
			if allowed == ext {
				found = true
			}
		}
		if !found {
			t.Fatalf("picker must allow %s", ext)
		}
	}

	model, cmd := app.Update(keyMsg("esc"))
	app = runCommands(t, model, cmd)
	if app.state != stateWorkflow {
		t.Fatalf("esc should return to the workflow screen")
	}

	driveToSimulated(t, ctl)
	app.sess = ctl.Snapshot()
	model, _ = app.Update(keyMsg("f"))
	app = asApp(t, model)
	if app.state != stateWorkflow {
		t.Fatalf("f must be refused after upload")
	}
	if !strings.Contains(app.statusMsg, "already uploaded") {
		t.Fatalf("status = %q, want already-uploaded hint", app.statusMsg)
	}
}

func TestViewRendersStagePanel(t *testing.T) {
	ctl := session.NewController(&stubBackend{}, nil)
	app := newTestApp(t, ctl)
	view := app.View()
	for _, want := range []string{"GAVEL", "Stage: Select Document (1/5)", "Case: none", "Backend:"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func newTestApp(t *testing.T, ctl *session.Controller) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ProjectDir:      dir,
		GavelProjectDir: filepath.Join(dir, config.GavelDir),
		Project: config.ProjectConfig{
			Version: 1,
			Backend: config.BackendConfig{BaseURL: "http://localhost:8000"},
		},
	}
	return NewApp(cfg, ctl, nil)
}

// runCommands drains a command (expanding batches) back through Update until
// no work remains, so tests can drive asynchronous flows synchronously.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app := asApp(t, model)
	queue := []tea.Cmd{}
	if cmd != nil {
		queue = append(queue, cmd)
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app = asApp(t, nextModel)
		if nextCmd != nil {
			queue = append(queue, nextCmd)
		}
	}
	return app
}

func asApp(t *testing.T, model tea.Model) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return app
}

func keyMsg(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func driveToSimulated(t *testing.T, ctl *session.Controller) {
	t.Helper()
	ctx := context.Background()
	selectTempDoc(t, ctl, "case.pdf")
	if _, err := ctl.Upload(ctx); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := ctl.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := ctl.Simulate(ctx); err != nil {
		t.Fatalf("simulate: %v", err)
	}
}

func selectTempDoc(t *testing.T, ctl *session.Controller, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("sample case text"), 0o644); err != nil {
		t.Fatalf("write temp doc: %v", err)
	}
	if err := ctl.SelectFile(path); err != nil {
		t.Fatalf("select file: %v", err)
	}
}

// stubBackend answers every call with canned results; auditErr lets tests
// inject a backend failure.
type stubBackend struct {
	uploads  int
	auditErr error
}

func (s *stubBackend) Upload(ctx context.Context, filename string, content io.Reader) (api.UploadResult, error) {
	s.uploads++
	return api.UploadResult{CaseID: "abc123", RawText: "sample case text"}, nil
}

func (s *stubBackend) ProcessCase(ctx context.Context, caseID string) (api.CaseDetails, error) {
	return api.CaseDetails{Facts: "facts", Issues: "issues", Holding: "holding"}, nil
}

func (s *stubBackend) Predict(ctx context.Context, caseID string) (api.Prediction, error) {
	return api.Prediction{Label: "FAVOR_PLAINTIFF", Confidence: 60, Method: "baseline_keyword_classifier"}, nil
}

func (s *stubBackend) Simulate(ctx context.Context, caseID string, rounds int) (api.Simulation, error) {
	return api.Simulation{
		RoundsCompleted: rounds,
		Transcript:      []api.Turn{{Round: 1, Speaker: "Plaintiff Lawyer", Argument: "Argument"}},
		Verdict:         api.Verdict{Verdict: "FAVOR_PLAINTIFF", Confidence: 75},
	}, nil
}

func (s *stubBackend) Audit(ctx context.Context, caseID string) (api.AuditResult, error) {
	if s.auditErr != nil {
		return api.AuditResult{}, s.auditErr
	}
	return api.AuditResult{FairnessScore: 90}, nil
}

func (s *stubBackend) Case(ctx context.Context, caseID string) (api.CaseRecord, error) {
	return api.CaseRecord{"case_id": caseID}, nil
}
