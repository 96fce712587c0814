package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// explainCommand creates the explain command.
func (c *CLI) explainCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "explain <file>",
		Short: "Step through the safety check interactively",
		Long: `Explain shows the graph reduction one finishing process at a time: which
process could run, the units it returned, and what was left when no further
process could proceed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateGraphPath(args[0], io.Extensions()); err != nil {
				return err
			}
			g, err := io.ImportGraph(args[0])
			if err != nil {
				return err
			}
			model := newExplainModel(g, deadlock.Detect(g))
			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), model.transcript())
				return nil
			}
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print every step instead of starting the viewer")

	return cmd
}

// =============================================================================
// explainModel - Reduction stepper
// =============================================================================

var (
	explainActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	explainDoneStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	explainStuckStyle  = lipgloss.NewStyle().Foreground(colorRed)
	explainHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// explainModel is the bubbletea model for the reduction stepper.
// Cursor 0 is the initial state; cursor i > 0 is after Steps[i-1].
type explainModel struct {
	graph    rag.Graph
	analysis *deadlock.Analysis
	cursor   int
}

func newExplainModel(g rag.Graph, a *deadlock.Analysis) explainModel {
	return explainModel{graph: g, analysis: a}
}

func (m explainModel) steps() []deadlock.Step { return m.analysis.Reduction.Steps }

func (m explainModel) Init() tea.Cmd {
	return nil
}

func (m explainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ", "enter":
			if m.cursor < len(m.steps()) {
				m.cursor++
			}
		case "left", "h", "p":
			if m.cursor > 0 {
				m.cursor--
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.steps())
		}
	}
	return m, nil
}

func (m explainModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Reduction step %d/%d", m.cursor, len(m.steps()))))
	b.WriteString("\n")
	b.WriteString(explainHelpStyle.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.stepView(m.cursor))
	return b.String()
}

// stepView renders the state after the given number of steps.
func (m explainModel) stepView(cursor int) string {
	model := m.analysis.Model
	label := m.graph.Labeler()
	steps := m.steps()

	var b strings.Builder
	available := model.Available
	if cursor == 0 {
		b.WriteString("Initial state\n")
	} else {
		st := steps[cursor-1]
		available = st.Available
		b.WriteString(fmt.Sprintf("Pass %d: %s finishes and releases its units\n",
			st.Pass, explainActiveStyle.Render(label(st.Process))))
	}
	b.WriteString("\n")

	finished := make(map[string]bool, cursor)
	for _, st := range steps[:cursor] {
		finished[st.Process] = true
	}
	for _, pid := range model.Processes {
		mark, style := "·", StyleDim
		switch {
		case cursor > 0 && steps[cursor-1].Process == pid:
			mark, style = "▸", explainActiveStyle
		case finished[pid]:
			mark, style = iconSuccess, explainDoneStyle
		case cursor == len(steps) && m.analysis.Report.IsDeadlocked:
			mark, style = iconError, explainStuckStyle
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render(mark), style.Render(label(pid))))
	}
	b.WriteString("\n")

	if len(model.Resources) > 0 {
		b.WriteString(vectorTable(model.Resources, []string{"available"}, available))
		b.WriteString("\n")
	}

	if cursor == len(steps) {
		b.WriteString("\n")
		rep := m.analysis.Report
		if rep.IsDeadlocked {
			b.WriteString(explainStuckStyle.Render("No remaining process can proceed: " +
				strings.Join(rep.DeadlockedProcessIDs, ", ")))
		} else {
			b.WriteString(explainDoneStyle.Render("All processes finished."))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// transcript renders every step in order, for --plain.
func (m explainModel) transcript() string {
	var b strings.Builder
	for i := 0; i <= len(m.steps()); i++ {
		b.WriteString(m.stepView(i))
		if i < len(m.steps()) {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
