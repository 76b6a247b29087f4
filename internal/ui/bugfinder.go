package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/emoji"
	"github.com/yildizm/BugFinder/internal/logger"
	"github.com/yildizm/BugFinder/internal/view"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	editorHeight  = 10

	// chrome is the number of lines around the two panels
	chrome = 9

	maxCodeChars  = 512 * 1024
	maxCodeLines  = 10000
	minPanelWidth = 20
)

type focusArea int

const (
	focusEditor focusArea = iota
	focusResults
)

// Options configures the interactive view
type Options struct {
	// Language preselected in the selector; python when empty
	Language bugapi.Language

	// Code preloaded into the editor
	Code string

	// Markdown renders descriptions and suggestions with glamour
	Markdown bool

	Logger *logger.Logger
}

// Model is the interactive BugFinderView
type Model struct {
	ctx    context.Context
	client Client
	log    *logger.Logger

	state view.State

	editor   textarea.Model
	spinner  spinner.Model
	results  viewport.Model
	renderer *glamour.TermRenderer
	markdown bool
	styles   *Styles

	focus    focusArea
	width    int
	height   int
	quitting bool

	// cancel funcs of in-flight requests, keyed by generation
	findCancels   map[uint64]context.CancelFunc
	sampleCancels map[uint64]context.CancelFunc
}

// NewModel creates the view. Every request runs under a child of ctx.
func NewModel(ctx context.Context, client Client, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	styles := GetStyles()

	ta := textarea.New()
	ta.Placeholder = view.CodePlaceholder
	ta.CharLimit = maxCodeChars
	ta.MaxHeight = maxCodeLines
	ta.ShowLineNumbers = true
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := &Model{
		ctx:           ctx,
		client:        client,
		log:           log,
		state:         view.New(),
		editor:        ta,
		spinner:       sp,
		results:       viewport.New(defaultWidth, 1),
		markdown:      opts.Markdown,
		styles:        styles,
		focus:         focusEditor,
		findCancels:   make(map[uint64]context.CancelFunc),
		sampleCancels: make(map[uint64]context.CancelFunc),
	}

	if opts.Language != "" {
		m.state, _ = view.Apply(m.state, view.LanguageSelected{Language: opts.Language})
	}
	if opts.Code != "" {
		m.editor.SetValue(opts.Code)
		m.state, _ = view.Apply(m.state, view.CodeEdited{Code: m.editor.Value()})
	}

	m.resize(defaultWidth, defaultHeight)
	return m
}

// State returns the current view state
func (m *Model) State() view.State {
	return m.state
}

// Init starts the cursor blink and the spinner
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case findBugSettledMsg:
		return m.handleFindBugSettled(msg)
	case samplesSettledMsg:
		return m.handleSamplesSettled(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusEditor {
		return m.updateEditor(msg)
	}
	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.resize(msg.Width, msg.Height)
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.handleQuit()
	case "ctrl+s":
		return m, m.apply(view.Submit{})
	case "ctrl+o":
		return m, m.apply(view.FetchSamples{})
	case "ctrl+l", "shift+tab":
		return m, m.apply(view.LanguageSelected{Language: m.state.Language().Next()})
	case "tab":
		return m.handleSwitchFocus()
	}

	if m.focus == focusResults {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m.updateEditor(msg)
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.cancelAll()
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) handleSwitchFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusEditor {
		m.focus = focusResults
		m.editor.Blur()
		return m, nil
	}
	m.focus = focusEditor
	return m, m.editor.Focus()
}

func (m *Model) handleFindBugSettled(msg findBugSettledMsg) (tea.Model, tea.Cmd) {
	release(m.findCancels, msg.generation)
	if msg.err != nil && !bugapi.IsCanceled(msg.err) {
		m.log.WarnWithFields("analysis failed", []logger.Field{
			logger.F("generation", msg.generation),
			logger.Error(msg.err),
		})
	}
	return m, m.apply(view.SubmitSettled{
		Generation: msg.generation,
		Report:     msg.report,
		Err:        msg.err,
	})
}

func (m *Model) handleSamplesSettled(msg samplesSettledMsg) (tea.Model, tea.Cmd) {
	release(m.sampleCancels, msg.generation)
	switch {
	case msg.err == nil:
		m.log.DebugWithFields("sample cases received", []logger.Field{
			logger.F("generation", msg.generation),
			logger.Count(len(msg.cases)),
		})
	case !bugapi.IsCanceled(msg.err):
		m.log.WarnWithFields("sample fetch failed", []logger.Field{
			logger.F("generation", msg.generation),
			logger.Error(msg.err),
		})
	}
	return m, m.apply(view.SamplesSettled{
		Generation: msg.generation,
		Cases:      msg.cases,
		Err:        msg.err,
	})
}

// updateEditor forwards msg to the editor and records any edit
func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.editor.Value()

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	if after := m.editor.Value(); after != before {
		m.state, _ = view.Apply(m.state, view.CodeEdited{Code: after})
	}
	return m, cmd
}

// apply advances the state and turns the resulting command into a tea.Cmd
func (m *Model) apply(e view.Event) tea.Cmd {
	next, command := view.Apply(m.state, e)
	m.state = next
	m.refreshResults()

	switch c := command.(type) {
	case view.Ticket:
		release(m.findCancels, c.Supersedes)
		ctx, cancel := context.WithCancel(m.ctx)
		m.findCancels[c.Generation] = cancel
		m.log.DebugWithFields("submitting snippet", []logger.Field{
			logger.F("generation", c.Generation),
			logger.F("language", string(c.Language)),
		})
		return findBugCmd(ctx, m.client, c)

	case view.SampleTicket:
		release(m.sampleCancels, c.Supersedes)
		ctx, cancel := context.WithCancel(m.ctx)
		m.sampleCancels[c.Generation] = cancel
		return fetchSamplesCmd(ctx, m.client, c)

	case view.Cancel:
		m.log.Debug("abandoning request %d", c.Generation)
		release(m.findCancels, c.Generation)
	}
	return nil
}

// release cancels and forgets the request gen, if still tracked
func release(cancels map[uint64]context.CancelFunc, gen uint64) {
	if cancel, ok := cancels[gen]; ok {
		cancel()
		delete(cancels, gen)
	}
}

func (m *Model) cancelAll() {
	for gen := range m.findCancels {
		release(m.findCancels, gen)
	}
	for gen := range m.sampleCancels {
		release(m.sampleCancels, gen)
	}
}

// inFlight returns the number of tracked requests
func (m *Model) inFlight() int {
	return len(m.findCancels) + len(m.sampleCancels)
}

func (m *Model) resize(width, height int) {
	m.width = max(width, minPanelWidth+4)
	m.height = max(height, chrome+editorHeight+3)

	inner := m.width - 4
	m.editor.SetWidth(inner)
	m.editor.SetHeight(editorHeight)

	m.results.Width = inner
	m.results.Height = max(m.height-chrome-editorHeight, 3)

	if m.markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(inner-2),
		)
		if err != nil {
			m.log.Warn("markdown rendering disabled: %v", err)
			renderer = nil
		}
		m.renderer = renderer
	}

	m.refreshResults()
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	snap := view.Render(m.state)
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(emoji.Prefix("search")+snap.Title) + "\n\n")
	b.WriteString(m.renderLanguages(snap) + "\n")

	editorStyle, resultStyle := m.styles.Focused, m.styles.Blurred
	if m.focus == focusResults {
		editorStyle, resultStyle = m.styles.Blurred, m.styles.Focused
	}
	b.WriteString(editorStyle.Render(m.editor.View()) + "\n")
	b.WriteString(m.renderButtons(snap) + "\n")

	if snap.Error != "" {
		b.WriteString(m.styles.Error.Render(emoji.Prefix("error")+snap.Error) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(resultStyle.Render(m.results.View()) + "\n")
	b.WriteString(m.styles.Muted.Render("ctrl+s find bug • ctrl+o samples • ctrl+l language • tab focus • esc quit"))

	return b.String()
}

func (m *Model) renderLanguages(snap view.Snapshot) string {
	parts := []string{m.styles.Header.Render(emoji.Prefix("language") + "Language:")}
	for _, opt := range snap.Languages {
		if opt.Selected {
			parts = append(parts, m.styles.Selected.Render(opt.Label))
		} else {
			parts = append(parts, m.styles.Unselected.Render(opt.Label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderButtons(snap view.Snapshot) string {
	submit := m.styles.Button.Render("[ctrl+s] " + snap.SubmitLabel)
	if snap.SubmitDisabled {
		submit = m.spinner.View() + " " + m.styles.ButtonDisabled.Render(snap.SubmitLabel)
	}

	samples := m.styles.Button.Render("[ctrl+o] " + snap.SamplesLabel)
	if snap.SamplesLoading {
		samples = m.spinner.View() + " " + m.styles.ButtonDisabled.Render(snap.SamplesLabel)
	}

	return submit + "   " + samples
}

// refreshResults redraws the result panel from the current state
func (m *Model) refreshResults() {
	m.results.SetContent(m.resultsContent(view.Render(m.state)))
}

func (m *Model) resultsContent(snap view.Snapshot) string {
	var sections []string

	if snap.Result != nil {
		sections = append(sections,
			m.styles.Success.Render(emoji.Prefix("bug")+"Bug Analysis")+"\n"+m.renderBlock(*snap.Result))
	}

	if len(snap.Samples) > 0 {
		var b strings.Builder
		b.WriteString(m.styles.Header.Render(emoji.Prefix("samples") + "Sample Cases"))
		for i, block := range snap.Samples {
			fmt.Fprintf(&b, "\n\n%s", m.styles.Muted.Render(fmt.Sprintf("#%d", i+1)))
			b.WriteString("\n" + m.renderBlock(block))
		}
		sections = append(sections, b.String())
	}

	if len(sections) == 0 {
		return m.styles.Muted.Render("Results and sample cases appear here.")
	}
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderBlock(block view.Block) string {
	var b strings.Builder
	b.WriteString(m.styles.Label.Render("Bug Type: ") + m.styles.BugType.Render(block.BugType) + "\n")
	b.WriteString(m.styles.Label.Render(emoji.Prefix("details")+"Description") + "\n")
	b.WriteString(m.renderText(block.Description))
	if block.HasSuggestion {
		b.WriteString("\n" + m.styles.Label.Render(emoji.Prefix("suggestion")+"Suggestion") + "\n")
		b.WriteString(m.styles.Suggestion.Render(m.renderText(block.Suggestion)))
	}
	return b.String()
}

// renderText renders already-cleaned text as markdown, or as-is without a renderer
func (m *Model) renderText(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		m.log.Debug("markdown render failed: %v", err)
		return text
	}
	return strings.Trim(out, "\n")
}

// Run starts the interactive view and blocks until the user quits or ctx ends
func Run(ctx context.Context, client Client, opts Options) error {
	model := NewModel(ctx, client, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	model.cancelAll()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
