// internal/session/session.go
//
// The workflow controller: one Session, one operation per workflow action,
// stage ordering enforced before anything touches the network. All analysis
// happens on the backend; the controller only records what came back.

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/gavel/internal/api"
	"github.com/yourusername/gavel/internal/logbook"
)

// DefaultRounds is how many debate rounds the backend runs per simulation.
const DefaultRounds = 2

var (
	// ErrBusy means another operation is still in flight for this session.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoFile means upload was requested before a document was selected.
	ErrNoFile = errors.New("no document selected")
	// ErrNoCase means an operation that needs a case id ran before upload.
	ErrNoCase = errors.New("no case uploaded yet")
	// ErrStage means the operation is not available at the current stage.
	ErrStage = errors.New("not available at this stage")
	// ErrPredicted means a baseline prediction was already recorded.
	ErrPredicted = errors.New("baseline prediction already recorded")
)

// Backend is the slice of the API client the controller needs. The real
// implementation is api.Client; tests substitute a fake.
type Backend interface {
	Upload(ctx context.Context, filename string, content io.Reader) (api.UploadResult, error)
	ProcessCase(ctx context.Context, caseID string) (api.CaseDetails, error)
	Predict(ctx context.Context, caseID string) (api.Prediction, error)
	Simulate(ctx context.Context, caseID string, rounds int) (api.Simulation, error)
	Audit(ctx context.Context, caseID string) (api.AuditResult, error)
	Case(ctx context.Context, caseID string) (api.CaseRecord, error)
}

// Session is the client-side state for one analysis workflow. The result
// pointers are nil until the corresponding operation succeeds and are
// replaced wholesale on success, never mutated in place.
type Session struct {
	RunID        string
	SelectedFile string
	CaseID       string
	RawText      string
	Details      *api.CaseDetails
	Prediction   *api.Prediction
	Simulation   *api.Simulation
	Audit        *api.AuditResult
	Stage        Stage
	Busy         bool
}

// Controller owns a Session and serializes workflow operations on it. The
// mutex guards the session because the TUI runs operations on command
// goroutines. The Busy flag is what actually serializes the workflow: a
// second operation started while one is in flight fails fast with ErrBusy
// instead of queueing.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	log     *logbook.Logbook
	sess    Session
}

// NewController creates a controller with a fresh, empty session.
func NewController(backend Backend, log *logbook.Logbook) *Controller {
	return &Controller{
		backend: backend,
		log:     log,
		sess:    newSession(),
	}
}

func newSession() Session {
	return Session{
		RunID: uuid.NewString(),
		Stage: StageUpload,
	}
}

// BackendClient exposes the backend implementation, mainly so the TUI can
// run its startup reachability probe against the concrete client.
func (c *Controller) BackendClient() Backend {
	return c.backend
}

// Snapshot returns a copy of the current session for rendering.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// SelectFile records the document to upload. Local only; no request is made.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Busy {
		return ErrBusy
	}
	if c.sess.Stage != StageUpload {
		return fmt.Errorf("%w: document already uploaded", ErrStage)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoFile
	}
	c.sess.SelectedFile = path
	c.log.Info("Selected %s", filepath.Base(path))
	return nil
}

// Upload sends the selected document to the backend. On success the session
// gains its case id and the extracted text, and the stage advances.
func (c *Controller) Upload(ctx context.Context) (Session, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.Stage != StageUpload {
			return fmt.Errorf("%w: case already uploaded", ErrStage)
		}
		if s.SelectedFile == "" {
			return ErrNoFile
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	file, err := os.Open(snap.SelectedFile)
	if err != nil {
		return c.fail("Upload", fmt.Errorf("open document: %w", err))
	}
	defer file.Close()

	result, err := c.backend.Upload(ctx, filepath.Base(snap.SelectedFile), file)
	if err != nil {
		return c.fail("Upload", err)
	}
	c.log.Info("Uploaded %s · case %s", filepath.Base(snap.SelectedFile), result.CaseID)
	return c.commit(func(s *Session) {
		s.CaseID = result.CaseID
		s.RawText = result.RawText
		s.Stage = StageProcess
	}), nil
}

// Process asks the backend to extract facts, issues, and holding.
func (c *Controller) Process(ctx context.Context) (Session, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.Stage != StageProcess {
			return fmt.Errorf("%w: upload a document first", ErrStage)
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	details, err := c.backend.ProcessCase(ctx, snap.CaseID)
	if err != nil {
		return c.fail("Process", err)
	}
	c.log.Info("Extracted case details for %s", snap.CaseID)
	return c.commit(func(s *Session) {
		s.Details = &details
		s.Stage = StageProcessed
	}), nil
}

// Predict fetches the baseline classifier prediction. Optional, at most
// once per session, and it does not move the stage.
func (c *Controller) Predict(ctx context.Context) (Session, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.Stage != StageProcessed {
			return fmt.Errorf("%w: process the case first", ErrStage)
		}
		if s.Prediction != nil {
			return ErrPredicted
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	prediction, err := c.backend.Predict(ctx, snap.CaseID)
	if err != nil {
		return c.fail("Predict", err)
	}
	c.log.Info("Baseline prediction %s (%.0f%%) for %s", prediction.Label, prediction.Confidence, snap.CaseID)
	return c.commit(func(s *Session) {
		s.Prediction = &prediction
	}), nil
}

// Simulate runs the multi-agent debate. Re-running from the simulated stage
// replaces the previous transcript and verdict.
func (c *Controller) Simulate(ctx context.Context) (Session, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.Stage != StageProcessed && s.Stage != StageSimulated {
			return fmt.Errorf("%w: process the case first", ErrStage)
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	simulation, err := c.backend.Simulate(ctx, snap.CaseID, DefaultRounds)
	if err != nil {
		return c.fail("Simulate", err)
	}
	c.log.Info("Simulation complete · verdict %s (%.0f%%)", simulation.Verdict.Verdict, simulation.Verdict.Confidence)
	return c.commit(func(s *Session) {
		s.Simulation = &simulation
		s.Stage = StageSimulated
	}), nil
}

// Audit runs the bias audit over the verdict. Terminal; afterwards only
// Reset remains.
func (c *Controller) Audit(ctx context.Context) (Session, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.Stage != StageSimulated {
			return fmt.Errorf("%w: run the simulation first", ErrStage)
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	audit, err := c.backend.Audit(ctx, snap.CaseID)
	if err != nil {
		return c.fail("Audit", err)
	}
	c.log.Info("Audit complete · fairness %.0f/100", audit.FairnessScore)
	return c.commit(func(s *Session) {
		s.Audit = &audit
		s.Stage = StageAudited
	}), nil
}

// Case fetches the full server-side case record for inspection. It never
// mutates the session.
func (c *Controller) Case(ctx context.Context) (api.CaseRecord, error) {
	snap, err := c.begin(func(s *Session) error {
		if s.CaseID == "" {
			return ErrNoCase
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record, err := c.backend.Case(ctx, snap.CaseID)
	if err != nil {
		c.fail("Case", err)
		return nil, err
	}
	c.commit(nil)
	return record, nil
}

// Reset discards the session and starts over at the upload stage with a
// fresh run id. Blocked while an operation is in flight so an in-flight
// result can never land on the new session.
func (c *Controller) Reset() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Busy {
		return c.sess, ErrBusy
	}
	c.sess = newSession()
	c.log.Info("Session reset · run %s", c.sess.RunID)
	return c.sess, nil
}

// begin validates the precondition and acquires the busy flag in one step.
// The returned snapshot is what the operation should work from; on error the
// session is untouched.
func (c *Controller) begin(check func(*Session) error) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Busy {
		return c.sess, ErrBusy
	}
	if check != nil {
		if err := check(&c.sess); err != nil {
			return c.sess, err
		}
	}
	c.sess.Busy = true
	return c.sess, nil
}

// commit releases the busy flag and applies the operation's writes in one
// step, so a snapshot can never observe a half-written session.
func (c *Controller) commit(apply func(*Session)) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.Busy = false
	if apply != nil {
		apply(&c.sess)
	}
	return c.sess
}

// fail releases the busy flag, logs, and leaves the session at its pre-call
// value so the operation can be retried.
func (c *Controller) fail(op string, err error) (Session, error) {
	c.mu.Lock()
	c.sess.Busy = false
	snap := c.sess
	c.mu.Unlock()
	c.log.Error("%s failed: %v", op, err)
	return snap, err
}
