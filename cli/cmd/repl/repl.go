package repl

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
	"github.com/ardnew/munge/munge"
)

// editMsg is sent when session editing completes successfully.
type editMsg struct{ doc *lang.Document }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help             Print this cruft
  kind [name]      Show or set the document kind statements are parsed as
  platform [name]  Show or set the platform whose macro blocks are inlined
  list             List the statements of the session
  edit             Edit the session in external $EDITOR
  reset            Discard the session
  clear            Clear screen
  quit             Exit REPL

Usage:
  Type a statement to compile it, e.g. Color(255, 0, 0); or Light() { Range(8); }
  The encoded chunks are printed as a hex dump and the statement joins the session
  Press Tab / Shift-Tab to cycle through completions
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Config holds the initial settings of a REPL session.
type Config struct {
	Kind     lang.Kind
	Platform lang.Platform
	CacheDir string
	Logger   log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *lang.Document
	kind         lang.Kind
	platform     lang.Platform
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL. The statements of reader, if not nil, form the initial
// session.
func Run(ctx context.Context, reader io.Reader, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := cfg.Logger

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.Bool("has_source", reader != nil),
	)

	session := &lang.Document{Kind: cfg.Kind, Platform: cfg.Platform}

	if reader != nil {
		session, err = lang.ParseReader(ctx, reader, parseOptions(cfg.Kind, cfg.Platform, logger)...)
		if err != nil {
			return err
		}
	}

	var history *History
	if cfg.CacheDir != "" {
		history = NewHistory(filepath.Join(cfg.CacheDir, baseHistory))
	} else {
		history = NewHistory("")
	}

	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, session, cfg, history)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *lang.Document,
	cfg Config,
	history *History,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	platform := cfg.Platform
	if platform == "" {
		platform = lang.DefaultPlatform
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		kind:       cfg.Kind,
		platform:   platform,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func parseOptions(kind lang.Kind, platform lang.Platform, logger log.Logger) []lang.Option {
	return []lang.Option{
		lang.WithKind(kind),
		lang.WithPlatform(platform),
		lang.WithLogger(logger),
	}
}

// compile parses src and encodes each of its entities. It returns the
// entities and the chunk bytes, without the enclosing root header.
func compile(ctx context.Context, src string, opts ...lang.Option) ([]lang.Entity, []byte, error) {
	doc, err := lang.ParseString(ctx, src, opts...)
	if err != nil {
		return nil, nil, err
	}

	root := chunk.New(chunk.UCFB)

	for _, e := range doc.Entities {
		if err := munge.EncodeEntity(root, e); err != nil {
			return nil, nil, err
		}
	}

	return doc.Entities, root.Bytes()[chunk.HeaderSize:], nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editMsg:
		m.session = msg.doc
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("entity_count", len(m.session.Entities)),
		)

		return m, tea.Println(resultStyle.Render("session updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := fmt.Sprintf("Type a %s statement or press Esc for commands", m.kind)
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		m.refreshMatches()

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	var cmd tea.Cmd

	if m.tabActive && msg.String() == " " {
		m.tabActive = false
	}

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves the tab selection by step, starting tab-cycling if needed.
// A sole candidate is completed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word in the input with the given
// replacement text and repositions the cursor.
func (m *model) replaceWord(replacement string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))
	m.wordEnd = m.wordStart + len(replacement)
}

// refreshMatches recomputes fuzzy matches for the current input state.
// While tab-cycling the word boundaries of the cycled word are kept.
func (m *model) refreshMatches() {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	entities, data, err := compile(m.ctxFunc(), input, parseOptions(m.kind, m.platform, m.logger)...)
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl eval failed",
			slog.String("input", input),
			slog.Any("error", err),
		)

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	// The session document may be shared with the caller that loaded it.
	session := m.session.Clone()
	session.Entities = append(session.Entities, entities...)
	m.session = session

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", input),
		slog.Int("entities", len(entities)),
		slog.Int("size", len(data)),
	)

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(dump(data))))
}

// dump returns the hex dump of data without its trailing newline.
func dump(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}

	return strings.TrimSuffix(hex.Dump(data), "\n")
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	name, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	reply := func(s string) tea.Cmd { return tea.Sequence(echo, tea.Println(s)) }
	fail := func(err error) tea.Cmd { return reply(errorStyle.Render("error: " + err.Error())) }

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, reply(helpMessage)

	case "k", "kind":
		if len(args) > 0 {
			kind, err := lang.ParseKind(args[0])
			if err != nil {
				return m, fail(err)
			}

			m.kind = kind
		}

		return m, reply(resultStyle.Render("kind " + m.kind.String()))

	case "p", "platform":
		if len(args) > 0 {
			platform, err := lang.ParsePlatform(args[0])
			if err != nil {
				return m, fail(err)
			}

			m.platform = platform
		}

		return m, reply(resultStyle.Render("platform " + string(m.platform)))

	case "l", "list":
		return m, reply(m.list())

	case "r", "reset":
		m.session = &lang.Document{Kind: m.kind, Platform: m.platform}

		return m, reply(hintStyle.Render("session cleared"))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, fail(ErrUnknownCmd.With(slog.String("command", name)))
	}
}

// list returns one line per session statement.
func (m model) list() string {
	if len(m.session.Entities) == 0 {
		return hintStyle.Render("  (empty session)")
	}

	var b strings.Builder

	for _, e := range m.session.Entities {
		raw := lang.Raw(e)
		if raw == nil {
			continue
		}

		args := make([]string, len(raw.Args))
		for i, a := range raw.Args {
			args[i] = a.String()
		}

		preview := "(" + strings.Join(args, ", ") + ")"
		if raw.Scoped {
			preview += fmt.Sprintf(" { %d }", len(raw.Body))
		}

		fmt.Fprintf(&b, "  %s%s %s\n", raw.Name, hintStyle.Render(preview),
			hintStyle.Render(fmt.Sprintf("%d:%d", raw.Pos.Line, raw.Pos.Column)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		doc:     m.session,
		opts:    parseOptions(m.kind, m.platform, m.logger),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.newDoc == nil:
			return editCancelledMsg{}
		default:
			return editMsg{doc: cmd.newDoc}
		}
	})
}

// historyStep moves through history by step. With inMode, entries of the
// other mode are skipped; otherwise the mode follows the entry.
func (m model) historyStep(step int, inMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (inMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		m.refreshMatches()

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches()
	}

	return m
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches()

	return m
}
