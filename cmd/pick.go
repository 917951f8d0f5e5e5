package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/output"
	"github.com/dhabedank/workflow-lens/internal/service"
	"github.com/dhabedank/workflow-lens/internal/taxonomy"
	"github.com/dhabedank/workflow-lens/internal/tui"
)

var pickLLM llmFlags

// PickCmd represents the pick command.
var PickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a process interactively and generate its lens",
	Long: `Walk through domain, process and focus area in the terminal, optionally
paste your current steps, and generate the workflow lens.

Press esc to go back a step. Esc while generating abandons the request;
its result is discarded if it arrives later.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickLLM.register(PickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &pickLLM)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Log lines would tear the alt screen.
	if cfg.Logging.File == "" {
		log.SetOutput(io.Discard)
	}

	catalog := rt.svc.Catalog()
	p := tea.NewProgram(newPickModel(catalog, rt.svc.RunWithID), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	final := m.(pickModel)
	switch {
	case final.cancelled:
		fmt.Println("Cancelled")
		return nil
	case final.err != nil:
		if rerr := output.RenderFailure(os.Stderr, final.err, "markdown", output.Config{}); rerr != nil {
			return rerr
		}
		return final.err
	case final.result == nil:
		return nil
	}

	adapter := output.NewTerminalAdapter()
	if err := adapter.Render(cmd.OutOrStdout(), final.result, output.Config{
		Heading:  catalog.Heading(),
		Year:     catalog.Year,
		WordWrap: 100,
	}); err != nil {
		return err
	}
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderWarnings(final.result.Warnings))
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderActorMix(final.result.Document))
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderSummary(tui.StagesFromResult(final.result, rt.modelLabel(), rt.repairModelLabel())))
	return nil
}

// Bubble Tea model for the picker

type pickStep int

const (
	pickDomain pickStep = iota
	pickProcess
	pickFocus
	pickSteps
	pickGenerating
)

var pickStepNames = []string{"Domain", "Process", "Focus", "Your steps"}

// runFunc generates a lens under a caller-chosen request id.
type runFunc func(ctx context.Context, requestID string, f service.Form) (*core.Result, error)

// generatedMsg carries a finished generation back to the model.
type generatedMsg struct {
	requestID string
	result    *core.Result
	err       error
}

type choiceItem struct {
	title string
	desc  string
}

func (c choiceItem) Title() string       { return c.title }
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return c.title }

type pickModel struct {
	catalog *taxonomy.Catalog
	run     runFunc
	newID   func() string

	step    pickStep
	lists   [pickSteps]list.Model
	steps   textarea.Model
	spinner spinner.Model

	form    service.Form
	pending string // request id whose result is still wanted
	cancel  context.CancelFunc
	problem string

	result    *core.Result
	err       error
	cancelled bool
}

func newChoiceList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(tui.ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(tui.ColorMuted)

	l := list.New(items, delegate, 72, 16)
	l.Title = title
	l.SetShowStatusBar(false)
	l.Styles.Title = tui.TitleStyle
	return l
}

func newPickModel(catalog *taxonomy.Catalog, run runFunc) pickModel {
	domains := make([]list.Item, len(catalog.Domains))
	for i, d := range catalog.Domains {
		domains[i] = choiceItem{title: d.Name, desc: fmt.Sprintf("%d processes", len(d.Processes))}
	}

	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Optional: your current steps, one per line (up to %d).\nLeave empty for the standard lens.", service.MaxCustomSteps)
	ta.CharLimit = service.MaxCustomSteps * (service.MaxCustomStepChars + 1)
	ta.SetWidth(72)
	ta.SetHeight(10)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.SpinnerStyle

	m := pickModel{
		catalog: catalog,
		run:     run,
		newID:   uuid.NewString,
		steps:   ta,
		spinner: sp,
	}
	m.lists[pickDomain] = newChoiceList("Select Domain", domains)
	m.lists[pickProcess] = newChoiceList("Select Process", nil)
	m.lists[pickFocus] = newChoiceList("Select Focus Area", nil)
	return m
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width, msg.Height-6)
		}
		m.steps.SetWidth(min(msg.Width-4, 100))
		return m, nil

	case spinner.TickMsg:
		if m.step != pickGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		return m.finish(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.abandon()
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			return m.back()
		}

		switch m.step {
		case pickDomain, pickProcess, pickFocus:
			if m.lists[m.step].FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "q":
				m.cancelled = true
				return m, tea.Quit
			case "enter":
				return m.choose()
			}
		case pickSteps:
			if msg.String() == "ctrl+d" {
				m.form.CustomSteps = m.steps.Value()
				return m.start()
			}
		case pickGenerating:
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.step {
	case pickDomain, pickProcess, pickFocus:
		m.lists[m.step], cmd = m.lists[m.step].Update(msg)
	case pickSteps:
		m.steps, cmd = m.steps.Update(msg)
	}
	return m, cmd
}

// choose records the highlighted item and fills the next list.
func (m pickModel) choose() (tea.Model, tea.Cmd) {
	item, ok := m.lists[m.step].SelectedItem().(choiceItem)
	if !ok {
		return m, nil
	}
	m.problem = ""

	switch m.step {
	case pickDomain:
		m.form.Domain = item.title
		d, _ := m.catalog.Domain(item.title)
		items := make([]list.Item, len(d.Processes))
		for i, p := range d.Processes {
			items[i] = choiceItem{title: p.Name, desc: p.Goal}
		}
		m.lists[pickProcess].SetItems(items)
		m.lists[pickProcess].Select(0)
	case pickProcess:
		m.form.Process = item.title
		p, _ := m.catalog.Lookup(m.form.Domain, item.title)
		areas := p.FocusAreas()
		items := make([]list.Item, len(areas))
		for i, a := range areas {
			items[i] = choiceItem{title: a}
		}
		m.lists[pickFocus].SetItems(items)
		m.lists[pickFocus].Select(0)
	case pickFocus:
		m.form.Focus = item.title
		m.step = pickSteps
		return m, m.steps.Focus()
	}
	m.step++
	return m, nil
}

// start launches generation under a fresh request id.
func (m pickModel) start() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	id := m.newID()
	m.pending = id
	m.cancel = cancel
	m.problem = ""
	m.step = pickGenerating
	m.steps.Blur()

	run, form := m.run, m.form
	generate := func() tea.Msg {
		result, err := run(ctx, id, form)
		return generatedMsg{requestID: id, result: result, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, generate)
}

// finish accepts the result of the pending request and drops any other.
func (m pickModel) finish(msg generatedMsg) (tea.Model, tea.Cmd) {
	if m.pending == "" || msg.requestID != m.pending {
		return m, nil
	}
	m.pending = ""
	m.cancel = nil

	var inputErr *service.InputError
	if errors.As(msg.err, &inputErr) {
		m.problem = inputErr.Error()
		m.step = pickSteps
		return m, m.steps.Focus()
	}
	m.result, m.err = msg.result, msg.err
	return m, tea.Quit
}

// abandon cancels the pending request, if any.
func (m *pickModel) abandon() {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.pending = ""
}

func (m pickModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case pickGenerating:
		m.abandon()
		m.step = pickSteps
		return m, m.steps.Focus()
	case pickSteps:
		m.steps.Blur()
		m.step = pickFocus
	case pickDomain:
		m.cancelled = true
		return m, tea.Quit
	default:
		m.step--
	}
	return m, nil
}

func (m pickModel) View() string {
	if m.cancelled || m.result != nil || m.err != nil {
		return ""
	}

	current := int(m.step)
	if m.step == pickGenerating {
		current = len(pickStepNames)
	}
	s := tui.RenderSteps(pickStepNames, current)

	switch m.step {
	case pickDomain, pickProcess, pickFocus:
		s += m.lists[m.step].View()
		s += tui.HelpStyle.Render("\n  ↑/↓: navigate • /: filter • enter: select • esc: back • q: quit")
	case pickSteps:
		s += tui.SubtitleStyle.Render(fmt.Sprintf("%s › %s › %s", m.form.Domain, m.form.Process, m.form.Focus)) + "\n\n"
		s += m.steps.View() + "\n"
		if m.problem != "" {
			s += "\n" + tui.ErrorStyle.Render(m.problem) + "\n"
		}
		s += tui.HelpStyle.Render("\n  ctrl+d: generate • esc: back • ctrl+c: quit")
	case pickGenerating:
		s += fmt.Sprintf("  %s Generating %s › %s…\n", m.spinner.View(), m.form.Process, m.form.Focus)
		s += tui.HelpStyle.Render("\n  esc: abandon and go back • ctrl+c: quit")
	}
	return s
}
