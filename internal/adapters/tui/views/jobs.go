package views

import (
	"fmt"
	"strings"

	"pixery/internal/adapters/tui/styles"
	"pixery/internal/browse"
	"pixery/internal/domain"
)

// RenderJobsStrip renders the one-line-per-job summary of in-flight and
// recently failed generations. Returns "" when there is nothing to show.
func RenderJobsStrip(tracker *browse.JobTracker) string {
	active := tracker.ActiveJobs()
	failed := tracker.FailedJobs()
	if len(active) == 0 && len(failed) == 0 {
		return ""
	}

	var lines []string
	for _, j := range active {
		label := j.Prompt
		if len(label) > 50 {
			label = label[:49] + "…"
		}
		switch j.Status {
		case domain.JobRunning:
			lines = append(lines, styles.JobRunning.Render("● running")+
				styles.StatusText.Render(fmt.Sprintf("  #%d %s  %s", j.ID, j.Model, label)))
		default:
			lines = append(lines, styles.JobPending.Render("○ queued")+
				styles.StatusText.Render(fmt.Sprintf("   #%d %s  %s", j.ID, j.Model, label)))
		}
	}
	for _, j := range failed {
		lines = append(lines, styles.JobFailed.Render("✗ failed")+
			styles.StatusText.Render(fmt.Sprintf("   #%d %s  %s", j.ID, j.Model, j.Error)))
	}
	if len(failed) > 0 {
		lines = append(lines, styles.HelpDesc.Render("press ")+
			styles.HelpKey.Render("J")+
			styles.HelpDesc.Render(" to dismiss failures"))
	}
	return strings.Join(lines, "\n")
}
