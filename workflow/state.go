package workflow

import (
	"sync"

	"invisiguard/models"
)

// WorkflowID identifies one of the two user-facing workflows.
type WorkflowID int

const (
	URLCheckWorkflow WorkflowID = iota
	EmailAnalysisWorkflow
)

func (id WorkflowID) String() string {
	switch id {
	case URLCheckWorkflow:
		return "Phishing Detection"
	case EmailAnalysisWorkflow:
		return "Email Spam Detection"
	default:
		return "Unknown"
	}
}

// URLCheckState is owned by the URL check workflow. FakeLink belongs to the
// same tab but is produced independently of Result.
type URLCheckState struct {
	URL       string
	Result    *models.URLCheckResult
	FakeLink  *models.FakeLinkResult
	LastError error
}

// EmailAnalysisState is owned by the email analysis workflow. Results and
// Insights always come from the same response.
type EmailAnalysisState struct {
	SelectedFiles models.SelectedFiles
	AnalyzedFiles models.SelectedFiles
	Results       []models.EmailAnalysisResult
	Insights      *models.InsightsSummary
	Busy          bool
	LastError     error
}

// Snapshot is a copy of the whole state that callers may read freely.
type Snapshot struct {
	Active        WorkflowID
	URLCheck      URLCheckState
	EmailAnalysis EmailAnalysisState
}

// State is the single container for both workflow records. All mutation
// happens under mu and never while a request is in flight.
type State struct {
	mu       sync.Mutex
	active   WorkflowID
	epoch    uint64
	urlCheck URLCheckState
	email    EmailAnalysisState
}

func NewState() *State {
	return &State{active: URLCheckWorkflow}
}

// Snapshot returns a deep enough copy that later mutations are not visible
// through it.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Active:        s.active,
		URLCheck:      s.urlCheck,
		EmailAnalysis: s.email,
	}

	if s.urlCheck.Result != nil {
		r := *s.urlCheck.Result
		snap.URLCheck.Result = &r
	}
	if s.urlCheck.FakeLink != nil {
		l := *s.urlCheck.FakeLink
		snap.URLCheck.FakeLink = &l
	}

	snap.EmailAnalysis.SelectedFiles = s.email.SelectedFiles.Clone()
	snap.EmailAnalysis.AnalyzedFiles = s.email.AnalyzedFiles.Clone()
	if s.email.Results != nil {
		snap.EmailAnalysis.Results = make([]models.EmailAnalysisResult, len(s.email.Results))
		copy(snap.EmailAnalysis.Results, s.email.Results)
	}
	if s.email.Insights != nil {
		i := *s.email.Insights
		snap.EmailAnalysis.Insights = &i
	}

	return snap
}

// reset clears both records and starts a new epoch. Busy survives because
// the guarded call is still running and will release it itself.
func (s *State) reset(active WorkflowID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = active
	s.epoch++
	s.urlCheck = URLCheckState{}
	s.email = EmailAnalysisState{Busy: s.email.Busy}
}

// current reports whether no reset happened since epoch was read.
// Caller holds mu.
func (s *State) current(epoch uint64) bool {
	return s.epoch == epoch
}
