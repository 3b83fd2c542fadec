// Package render provides terminal output for postings, job listings and their display states.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KhushiMandaliya2/RoleCall/internal/api"
	"github.com/KhushiMandaliya2/RoleCall/internal/lifecycle"
	"github.com/KhushiMandaliya2/RoleCall/internal/listings"
	"github.com/KhushiMandaliya2/RoleCall/internal/postings"
	"github.com/KhushiMandaliya2/RoleCall/internal/types"
)

const (
	// boxWidth is the width of formatted output boxes
	boxWidth = 64
	// descriptionLines is how many description lines a list entry shows
	descriptionLines = 2
)

// Empty-state wording shown to candidates.
const (
	NoJobsTitle   = "No Jobs Available"
	NoJobsMessage = "There are currently no job openings. Please check back later!"
)

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// Printer writes human-readable output.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// WithColor enables ANSI colors for status markers.
func (p *Printer) WithColor(enabled bool) *Printer {
	p.color = enabled
	return p
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Colored lines are not cut so an escape sequence is never split.
		if !strings.Contains(line, "\033") {
			line = truncate(line, boxWidth-4)
		}
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to width runes. ANSI sequences are not counted.
func pad(s string, width int) string {
	n := len([]rune(stripANSI(s)))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func stripANSI(s string) string {
	for _, code := range []string{ansiGreen, ansiRed, ansiReset} {
		s = strings.ReplaceAll(s, code, "")
	}
	return s
}

// Postings outputs the recruiter's posting list, or the message for its display state.
func (p *Printer) Postings(snap postings.Snapshot) {
	switch snap.State {
	case lifecycle.StateIdle:
		p.printBox("JOB POSTINGS", "Postings have not been loaded yet.")
		return
	case lifecycle.StateLoading:
		p.printBox("JOB POSTINGS", "Loading job postings...")
		return
	case lifecycle.StateEmpty:
		p.printBox("JOB POSTINGS", "No job postings yet.\nCreate one with: rolecall postings create --title <title>")
		return
	}

	var sb strings.Builder
	if snap.State == lifecycle.StateFailed {
		sb.WriteString(p.paint(ansiRed, "Failed to load job postings: "+Reason(snap.Err)))
		sb.WriteString("\n")
		if len(snap.Postings) == 0 {
			p.printBox("JOB POSTINGS", sb.String())
			return
		}
		sb.WriteString("Showing the last loaded postings.\n\n")
	}

	for i, posting := range snap.Postings {
		marker := ""
		if snap.Session.EditingID == posting.ID {
			marker = "  (editing)"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s%s\n", posting.ID, posting.Title, marker))
		writeDescription(&sb, posting.Description)
		if i < len(snap.Postings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("JOB POSTINGS (%d)", len(snap.Postings)), strings.TrimSuffix(sb.String(), "\n"))
}

// Jobs outputs the candidate job feed, or the message for its display state. canApply decides
// whether a job is marked as open for application; nil marks none.
func (p *Printer) Jobs(snap listings.Snapshot, canApply func(jobID string) bool) {
	switch snap.State {
	case lifecycle.StateIdle, lifecycle.StateAwaitingIdentity:
		p.printBox("JOBS", "Waiting for sign-in...")
		return
	case lifecycle.StateAuthRequired:
		p.printBox("JOBS", "Please log in to view and apply to jobs.\nSet --user or --token.")
		return
	case lifecycle.StateLoading:
		p.printBox("JOBS", "Loading jobs...")
		return
	case lifecycle.StateEmpty:
		p.printBox(strings.ToUpper(NoJobsTitle), NoJobsMessage)
		return
	}

	var sb strings.Builder
	if snap.State == lifecycle.StateFailed {
		sb.WriteString(p.paint(ansiRed, "Failed to load jobs: "+Reason(snap.Err)))
		sb.WriteString("\n")
		if len(snap.Jobs) == 0 {
			p.printBox("JOBS", sb.String())
			return
		}
		sb.WriteString("Showing the last loaded jobs.\n\n")
	}

	userID, _ := snap.Identity.UserID()
	for i, job := range snap.Jobs {
		sb.WriteString(fmt.Sprintf("[%s] %s%s\n", job.ID, job.Title, p.jobStatus(job, userID, canApply)))
		writeDescription(&sb, job.Description)
		if i < len(snap.Jobs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("JOBS (%d)", len(snap.Jobs)), strings.TrimSuffix(sb.String(), "\n"))
}

func (p *Printer) jobStatus(job types.JobListing, userID string, canApply func(string) bool) string {
	switch {
	case job.HasApplied:
		return "  " + p.paint(ansiGreen, "✓ Applied")
	case job.OwnedBy(userID):
		return "  (your posting)"
	case canApply != nil && canApply(job.ID):
		return "  (open)"
	default:
		return ""
	}
}

// Job outputs the details of one job.
func (p *Printer) Job(job *types.JobListing) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:      %s\n", job.ID))
	status := "Not applied"
	if job.HasApplied {
		status = p.paint(ansiGreen, "Applied")
	}
	sb.WriteString(fmt.Sprintf("Status:  %s\n", status))
	if job.OwnerUserID != nil {
		sb.WriteString(fmt.Sprintf("Posted by: %s\n", *job.OwnerUserID))
	}
	if desc := PlainText(job.Description); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
	}

	p.printBox(job.Title, strings.TrimSuffix(sb.String(), "\n"))
}

// Applied outputs the confirmation of a successful application.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) Applied(result *types.ApplyResult, fallbackTitle string) {
	title := fallbackTitle
	if result != nil && result.JobTitle != "" {
		title = result.JobTitle
	}
	fmt.Fprintln(p.out, p.paint(ansiGreen, fmt.Sprintf("Successfully applied to %s!", title)))
}

// Saved outputs the confirmation of a created or updated posting.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) Saved(posting *types.JobPosting, updated bool) {
	verb := "Created"
	if updated {
		verb = "Updated"
	}
	fmt.Fprintf(p.out, "%s job posting [%s] %s\n", verb, posting.ID, posting.Title)
}

// Deleted outputs the confirmation of a deleted posting.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) Deleted(id string) {
	fmt.Fprintf(p.out, "Deleted job posting [%s]\n", id)
}

func writeDescription(sb *strings.Builder, description string) {
	text := PlainText(description)
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == descriptionLines {
			sb.WriteString("    ...\n")
			break
		}
		sb.WriteString("    " + line + "\n")
	}
}

// Reason returns the message a user should see for err.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, lifecycle.ErrUnauthenticated):
		return "Please log in to continue."
	case errors.Is(err, lifecycle.ErrAlreadyApplied):
		return "You have already applied to this job."
	case errors.Is(err, lifecycle.ErrApplyInFlight):
		return "Your application is already being submitted."
	case errors.Is(err, lifecycle.ErrNotConfirmed):
		return "Cancelled."
	case errors.Is(err, lifecycle.ErrStaleReference):
		return "That item is no longer available. Refresh and try again."
	case errors.Is(err, lifecycle.ErrInvalidDraft):
		return "A title is required."
	case errors.Is(err, postings.ErrRefreshAfterWrite):
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return "Saved, but the list could not be refreshed: " + apiErr.Reason()
		}
		return err.Error()
	}
	return api.Reason(err)
}
