// internal/tui/app.go
//
// This is the main TUI for Gavel.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Workflow operations run as commands on their own goroutines; the session
// controller serializes them, and inFlight mirrors that here so the key
// handler can refuse a second operation before it ever reaches the
// controller.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/gavel/internal/api"
	"github.com/yourusername/gavel/internal/config"
	"github.com/yourusername/gavel/internal/logbook"
	"github.com/yourusername/gavel/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateWorkflow appState = iota // The single workflow screen
	statePickFile                 // Document picker before upload
)

// Operation identifiers, used for dispatch and status messages.
const (
	opUpload   = "upload"
	opProcess  = "process"
	opPredict  = "predict"
	opSimulate = "simulate"
	opAudit    = "audit"
	opCase     = "case record"
)

const pingTimeout = 5 * time.Second

var stageOrder = []session.Stage{
	session.StageUpload,
	session.StageProcess,
	session.StageProcessed,
	session.StageSimulated,
	session.StageAudited,
}

// operationFinishedMsg reports a completed workflow operation along with the
// session snapshot taken after it settled.
type operationFinishedMsg struct {
	op   string
	sess session.Session
	err  error
}

// caseRecordMsg carries the fetched server-side case document.
type caseRecordMsg struct {
	record api.CaseRecord
	err    error
}

// backendCheckMsg reports the startup reachability probe.
type backendCheckMsg struct {
	err error
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	cfg     *config.Config
	ctl     *session.Controller
	logbook *logbook.Logbook

	state appState
	sess  session.Session

	// UI components
	picker filepicker.Model
	spin   spinner.Model

	// Fetched case record, shown until the next operation runs
	record     api.CaseRecord
	showRecord bool

	inFlight     string // operation currently running, "" when idle
	confirmReset bool
	statusMsg    string
	backendErr   string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates the application model around an existing controller.
func NewApp(cfg *config.Config, ctl *session.Controller, lb *logbook.Logbook) *App {
	picker := filepicker.New()
	picker.AllowedTypes = []string{".pdf", ".txt"}
	picker.CurrentDirectory = cfg.ProjectDir
	picker.ShowHidden = false

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		cfg:       cfg,
		ctl:       ctl,
		logbook:   lb,
		state:     stateWorkflow,
		sess:      ctl.Snapshot(),
		picker:    picker,
		spin:      spin,
		statusMsg: "Press f to choose a document",
	}
	lb.Info("Session opened · run %s · backend %s", app.sess.RunID, cfg.BackendURL())
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.checkBackend()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.picker.Height = max(5, msg.Height-12)
		return a, nil

	case spinner.TickMsg:
		if a.inFlight == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case backendCheckMsg:
		if msg.err != nil {
			a.backendErr = msg.err.Error()
			a.logbook.Warn("Backend check failed: %v", msg.err)
		} else {
			a.backendErr = ""
		}
		return a, nil

	case operationFinishedMsg:
		return a.handleOperationFinished(msg)

	case caseRecordMsg:
		a.inFlight = ""
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
			return a, nil
		}
		a.record = msg.record
		a.showRecord = true
		a.statusMsg = "Showing server case record · any operation hides it"
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case statePickFile:
			if key == "esc" {
				a.state = stateWorkflow
				a.statusMsg = "Document selection cancelled"
				return a, nil
			}
		case stateWorkflow:
			return a.handleWorkflowKey(key)
		}
	}

	// The file picker needs every message type (directory reads arrive as
	// internal messages), so route the remainder to it.
	if a.state == statePickFile {
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		if ok, path := a.picker.DidSelectFile(msg); ok {
			return a.selectDocument(path)
		}
		if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
			a.statusMsg = fmt.Sprintf("%s is not a .pdf or .txt document", filepath.Base(path))
			return a, cmd
		}
		return a, cmd
	}
	return a, nil
}

// handleWorkflowKey processes keys on the workflow screen. Keys for
// operations that are not available right now produce a status hint; the
// controller remains the authority on preconditions.
func (a *App) handleWorkflowKey(key string) (tea.Model, tea.Cmd) {
	if key != "r" {
		a.confirmReset = false
	}
	switch key {
	case "q":
		return a, tea.Quit
	case "f":
		if a.inFlight != "" {
			return a.busyHint()
		}
		if a.sess.Stage != session.StageUpload {
			a.statusMsg = "Document already uploaded · press r to start a new case"
			return a, nil
		}
		a.state = statePickFile
		a.statusMsg = "Pick a .pdf or .txt document · esc to cancel"
		return a, a.picker.Init()
	case "u":
		return a.dispatch(opUpload)
	case "p":
		return a.dispatch(opProcess)
	case "b":
		return a.dispatch(opPredict)
	case "s":
		return a.dispatch(opSimulate)
	case "a":
		return a.dispatch(opAudit)
	case "c":
		return a.dispatch(opCase)
	case "r":
		return a.handleReset()
	}
	return a, nil
}

// dispatch launches one workflow operation as a command. A second dispatch
// while one is running is refused here, and the controller's busy flag
// backstops the same rule.
func (a *App) dispatch(op string) (tea.Model, tea.Cmd) {
	if a.inFlight != "" {
		return a.busyHint()
	}
	a.inFlight = op
	a.showRecord = false
	a.confirmReset = false
	a.statusMsg = startStatus(op)
	return a, tea.Batch(a.spin.Tick, a.runOperation(op))
}

func (a *App) runOperation(op string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if op == opCase {
			record, err := a.ctl.Case(ctx)
			return caseRecordMsg{record: record, err: err}
		}
		var (
			sess session.Session
			err  error
		)
		switch op {
		case opUpload:
			sess, err = a.ctl.Upload(ctx)
		case opProcess:
			sess, err = a.ctl.Process(ctx)
		case opPredict:
			sess, err = a.ctl.Predict(ctx)
		case opSimulate:
			sess, err = a.ctl.Simulate(ctx)
		case opAudit:
			sess, err = a.ctl.Audit(ctx)
		default:
			sess = a.ctl.Snapshot()
			err = fmt.Errorf("unknown operation %q", op)
		}
		return operationFinishedMsg{op: op, sess: sess, err: err}
	}
}

func (a *App) handleOperationFinished(msg operationFinishedMsg) (tea.Model, tea.Cmd) {
	a.inFlight = ""
	a.sess = msg.sess
	if msg.err != nil {
		// Surface the error text as-is: APIError already prefers the
		// server's detail message over anything synthesized locally.
		a.statusMsg = msg.err.Error()
		return a, nil
	}
	a.statusMsg = doneStatus(msg.op, a.sess)
	return a, nil
}

// handleReset requires a second keypress so a stray r cannot discard a
// finished analysis.
func (a *App) handleReset() (tea.Model, tea.Cmd) {
	if a.inFlight != "" {
		a.statusMsg = "Cannot reset while an operation is running"
		return a, nil
	}
	if !a.confirmReset {
		a.confirmReset = true
		a.statusMsg = "Press r again to discard this session"
		return a, nil
	}
	a.confirmReset = false
	sess, err := a.ctl.Reset()
	a.sess = sess
	if err != nil {
		a.statusMsg = err.Error()
		return a, nil
	}
	a.record = nil
	a.showRecord = false
	a.statusMsg = "Session reset · press f to choose a document"
	return a, nil
}

func (a *App) selectDocument(path string) (tea.Model, tea.Cmd) {
	if err := a.ctl.SelectFile(path); err != nil {
		a.statusMsg = err.Error()
		a.state = stateWorkflow
		return a, nil
	}
	a.sess = a.ctl.Snapshot()
	a.state = stateWorkflow
	a.statusMsg = fmt.Sprintf("Selected %s · press u to upload", filepath.Base(path))
	return a, nil
}

func (a *App) busyHint() (tea.Model, tea.Cmd) {
	a.statusMsg = fmt.Sprintf("Still running %s · one operation at a time", a.inFlight)
	return a, nil
}

// checkBackend probes the API root so an unreachable backend shows up
// before the first upload attempt rather than during it.
func (a *App) checkBackend() tea.Cmd {
	client, ok := a.ctl.BackendClient().(*api.Client)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		return backendCheckMsg{err: client.Ping(ctx)}
	}
}

func startStatus(op string) string {
	switch op {
	case opUpload:
		return "Uploading document…"
	case opProcess:
		return "Extracting case details…"
	case opPredict:
		return "Running baseline classifier…"
	case opSimulate:
		return fmt.Sprintf("Running %d-round debate simulation…", session.DefaultRounds)
	case opAudit:
		return "Running bias audit…"
	case opCase:
		return "Fetching case record…"
	}
	return "Working…"
}

func doneStatus(op string, sess session.Session) string {
	switch op {
	case opUpload:
		return fmt.Sprintf("Case %s created · press p to extract details", sess.CaseID)
	case opProcess:
		return "Case details extracted · b=baseline prediction, s=simulate"
	case opPredict:
		if sess.Prediction != nil {
			return fmt.Sprintf("Baseline: %s (%.0f%%)", sess.Prediction.Label, sess.Prediction.Confidence)
		}
	case opSimulate:
		if sess.Simulation != nil {
			return fmt.Sprintf("Verdict: %s (%.0f%%) · press a to audit",
				sess.Simulation.Verdict.Verdict, sess.Simulation.Verdict.Confidence)
		}
	case opAudit:
		if sess.Audit != nil {
			return fmt.Sprintf("Fairness %.0f/100 · press r to start a new case", sess.Audit.FairnessScore)
		}
	}
	return "Done"
}
