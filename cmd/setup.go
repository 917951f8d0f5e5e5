package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/internal/config"
	"github.com/dhabedank/workflow-lens/internal/llm"
	"github.com/dhabedank/workflow-lens/internal/tui"
)

var resetConfig bool

// SetupCmd represents the setup command.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Configure workflow-lens with an interactive wizard.

This wizard helps you select the models used for generation:
- Generation model: drafts the workflow lens
- Repair model: fixes output that is not valid JSON (same provider)

Configuration is saved to ~/.workflow-lens.yaml unless --config names
another file. API keys are read from the environment and never saved.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset configuration to defaults")
}

func runSetup(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	if resetConfig {
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove config: %w", err)
		}
		fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration reset to defaults")
		fmt.Printf("  Removed: %s\n", configPath)
		return nil
	}

	// Start from the existing file when there is one.
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Load("")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	models := llm.AllModels()
	if len(models) == 0 {
		return fmt.Errorf("no models known")
	}
	if available := llm.AvailableModels(cfg.LLM); len(available) == 0 {
		fmt.Println(tui.WarningStyle.Render("⚠ No provider detected yet. Set an API key or install Claude Code or Codex before generating."))
	}

	p := tea.NewProgram(newSetupModel(models))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	finalModel := m.(setupModel)
	if finalModel.cancelled {
		fmt.Println("Setup cancelled")
		return nil
	}

	generation := finalModel.generation
	cfg.LLM.Provider = llm.ProviderFor(generation, cfg.LLM.PreferCLI)
	cfg.LLM.Model = generation.ID
	cfg.LLM.RepairModel = finalModel.repairModel

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	repairLabel := cfg.LLM.RepairModel
	if repairLabel == "" {
		repairLabel = "same as generation"
	}

	fmt.Println()
	fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration saved to " + configPath)
	fmt.Println()
	fmt.Println("Selected models:")
	fmt.Printf("  Provider:   %s\n", tui.ModelStyle.Render(cfg.LLM.Provider))
	fmt.Printf("  Generation: %s\n", tui.ModelStyle.Render(cfg.LLM.Model))
	fmt.Printf("  Repair:     %s\n", tui.ModelStyle.Render(repairLabel))

	return nil
}

// Bubble Tea model for the setup wizard

const (
	stepGeneration = iota
	stepRepair
	setupSteps
)

type setupModel struct {
	step        int
	models      []llm.ModelInfo
	lists       [setupSteps]list.Model
	generation  llm.ModelInfo
	repairModel string // empty means same as generation
	cancelled   bool
	width       int
	height      int
}

type modelItem struct {
	info llm.ModelInfo
	same bool // "same as generation" entry of the repair list
}

func (m modelItem) Title() string {
	if m.same {
		return "Same as generation model"
	}
	return m.info.Name
}

func (m modelItem) Description() string {
	if m.same {
		return "One model for both requests"
	}
	return m.info.Description
}

func (m modelItem) FilterValue() string { return m.Title() }

func newModelList(items []list.Item, title string, width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("#9b59b6"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("#95a5a6"))

	l := list.New(items, delegate, width, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = tui.TitleStyle
	return l
}

func newSetupModel(models []llm.ModelInfo) setupModel {
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = modelItem{info: m}
	}

	m := setupModel{
		models: models,
		width:  60,
		height: 14,
	}
	m.lists[stepGeneration] = newModelList(items, "Select Generation Model", m.width, m.height)
	m.lists[stepRepair] = newModelList(nil, "Select Repair Model", m.width, m.height)
	return m
}

// repairItems offers the generation model's provider only, since both
// requests go through one adapter.
func (m setupModel) repairItems() []list.Item {
	items := []list.Item{modelItem{same: true}}
	for _, info := range m.models {
		if info.Provider == m.generation.Provider && info.ID != m.generation.ID {
			items = append(items, modelItem{info: info})
		}
	}
	return items
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 4
		for i := range m.lists {
			m.lists[i].SetWidth(m.width)
			m.lists[i].SetHeight(m.height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			item, ok := m.lists[m.step].SelectedItem().(modelItem)
			if !ok {
				return m, nil
			}
			if m.step == stepGeneration {
				m.generation = item.info
				m.lists[stepRepair].SetItems(m.repairItems())
				m.lists[stepRepair].Select(0)
			} else if item.same {
				m.repairModel = ""
			} else {
				m.repairModel = item.info.ID
			}

			m.step++
			if m.step >= setupSteps {
				return m, tea.Quit
			}
			return m, nil

		case "left", "h", "esc":
			if m.step > 0 {
				m.step--
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.lists[m.step], cmd = m.lists[m.step].Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	if m.cancelled || m.step >= setupSteps {
		return ""
	}
	return tui.RenderSteps([]string{"Generation", "Repair"}, m.step) +
		m.lists[m.step].View() +
		tui.HelpStyle.Render("\n  ↑/↓: navigate • enter: select • ←: back • q: quit")
}
