package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/doit/internal/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect stored tasks",
}

var tasksListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List a scope's tasks",
	Long: `List the tasks of one scope, grouped by section.

Examples:
  doit tasks ls                          # shared list, personal profile
  doit tasks ls --scope user_1a2b3c --profile work`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		profileFlag, _ := cmd.Flags().GetString("profile")

		profile, err := models.ParseProfile(profileFlag)
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		tasks, err := st.ListTasks(cmd.Context(), scope, profile)
		if err != nil {
			return fmt.Errorf("error fetching tasks: %w", err)
		}

		renderTasks(cmd.OutOrStdout(), tasks, cfg.Sections())
		return nil
	},
}

// renderTasks prints tasks grouped by section in sections order
func renderTasks(w io.Writer, tasks []models.Task, sections models.SectionSet) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks found."))
		return
	}

	bySection := make(map[models.Section][]models.Task)
	for _, t := range tasks {
		bySection[t.Section] = append(bySection[t.Section], t)
	}

	var blocks []string
	for _, sec := range sections {
		group := bySection[sec]
		if len(group) == 0 {
			continue
		}

		style, ok := sectionStyles[string(sec)]
		if !ok {
			style = mutedStyle
		}
		lines := []string{style.Bold(true).Render(strings.ToUpper(string(sec))) + mutedStyle.Render(fmt.Sprintf(" (%d)", len(group)))}
		for _, t := range group {
			lines = append(lines, taskLine(t))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d tasks", len(tasks))))
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func taskLine(t models.Task) string {
	title := truncate(t.Title, 60)
	id := mutedStyle.Render(shortID(t.ID))
	if t.Completed {
		return fmt.Sprintf("  %s %s %s", checkStyle.Render("✓"), doneStyle.Render(title), id)
	}
	return fmt.Sprintf("  %s %s %s", mutedStyle.Render("○"), titleStyle.Render(title), id)
}

// truncate cuts s to at most max runes, ending in "..." when shortened
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	tasksListCmd.Flags().StringP("scope", "s", "", "user or guest id (empty is the shared list)")
	tasksListCmd.Flags().StringP("profile", "p", "personal", "profile: personal|work")
	tasksCmd.AddCommand(tasksListCmd)
}
