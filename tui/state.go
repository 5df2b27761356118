package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"invisiguard/utils"
	"invisiguard/workflow"
)

// Deps is what the TUI needs from the rest of the application.
type Deps struct {
	Session *workflow.Session
	Writer  *utils.ResultsWriter
	Logger  *zap.Logger
	BaseURL string
}

// Model represents the main TUI model
type Model struct {
	ctx     context.Context
	session *workflow.Session
	writer  *utils.ResultsWriter
	logger  *zap.Logger
	baseURL string

	width  int
	height int

	// Pane layout
	leftPaneWidth  int
	rightPaneWidth int
	showRightPane  bool

	// Input fields
	urlInput  textinput.Model
	fileInput textinput.Model

	// Requests in flight, counted locally so the spinner starts before the
	// command goroutine has touched the session.
	checking   int
	generating int
	analyzing  bool
	exporting  bool

	// Transient status line
	status      string
	statusIsErr bool
	statusSeq   int

	// Output summary for right pane
	outputSummary      []string
	outputScrollOffset int

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://example.com/login"
	urlInput.Prompt = "URL: "
	urlInput.PromptStyle = inputFieldStyle
	urlInput.TextStyle = inputTextStyle
	urlInput.PlaceholderStyle = placeholderStyle
	urlInput.Focus()

	fileInput := textinput.New()
	fileInput.Placeholder = "mail/*.eml, other.eml"
	fileInput.Prompt = "Files: "
	fileInput.PromptStyle = inputFieldStyle
	fileInput.TextStyle = inputTextStyle
	fileInput.PlaceholderStyle = placeholderStyle

	return Model{
		ctx:           ctx,
		session:       deps.Session,
		writer:        deps.Writer,
		logger:        logger.Named("tui"),
		baseURL:       deps.BaseURL,
		urlInput:      urlInput,
		fileInput:     fileInput,
		showRightPane: true,
		outputSummary: []string{},
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		help:          help.New(),
		keys:          defaultKeyMap(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// active returns the selected workflow.
func (m Model) active() workflow.WorkflowID {
	return m.session.Tabs.Active()
}

// inFlight reports whether any request started from this model is running.
func (m Model) inFlight() bool {
	return m.checking > 0 || m.generating > 0 || m.analyzing || m.exporting
}
