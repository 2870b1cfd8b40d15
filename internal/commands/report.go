package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/reports"
)

const (
	colorAccent    = "#7D56F4"
	colorMuted     = "#777777"
	colorSuccess   = "#04B575"
	colorWarning   = "#F2C94C"
	colorBorder    = "#444444"
	labelWidth     = 24
	numberWidth    = 8
	completeAtRate = 75.0
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print project reports",
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print ticket counts and completion rates for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		if projectID <= 0 {
			return fmt.Errorf("--project is required")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := commandContext(cmd)
		q := a.db.Queries()
		p, err := q.GetProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("project %d: %w", projectID, err)
		}
		s, err := reports.BuildSummary(ctx, q, projectID)
		if err != nil {
			return err
		}
		cmd.Println(renderSummary(p, s))
		return nil
	},
}

func init() {
	reportSummaryCmd.Flags().Int64("project", 0, "project id")
	reportCmd.AddCommand(reportSummaryCmd)
}

// renderSummary lays out a summary as titled sections inside a rounded border.
func renderSummary(p models.Project, s reports.Summary) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent))
	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted))

	header := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(p.Name),
		mutedStyle.Render(fmt.Sprintf("%d tickets, %d complete (%s)",
			s.TotalTickets, s.CompletedTickets, formatRate(s.CompletionRate))),
	)

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		renderSection("By status", s.ByStatus),
		renderSection("By priority", s.ByPriority),
		renderSection("By assignee", s.ByAssignee),
		renderSection("By deliverable", s.ByDeliverable),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(0, 1).
		Render(body)
}

func renderSection(title string, counts []reports.Count) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent))
	labelStyle := lipgloss.NewStyle().Width(labelWidth)
	numberStyle := lipgloss.NewStyle().Width(numberWidth).Align(lipgloss.Right)

	lines := []string{headerStyle.Render(title)}
	if len(counts) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)).Render("  none"))
		return strings.Join(lines, "\n") + "\n"
	}
	for _, c := range counts {
		label := c.Label
		if label == "" {
			label = "Unassigned"
		}
		rate := formatRate(c.CompletionRate)
		rateColor := colorWarning
		if c.CompletionRate >= completeAtRate {
			rateColor = colorSuccess
		}
		if c.Total == 0 {
			rateColor = colorMuted
		}
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			"  ",
			labelStyle.Render(truncate(label, labelWidth-1)),
			numberStyle.Render(fmt.Sprintf("%d", c.Total)),
			numberStyle.Render(fmt.Sprintf("%d", c.Completed)),
			numberStyle.Foreground(lipgloss.Color(rateColor)).Render(rate),
		))
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatRate(r float64) string {
	return fmt.Sprintf("%.1f%%", r)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
