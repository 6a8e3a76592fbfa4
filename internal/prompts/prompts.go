// Package prompts holds the system prompts used by the tailoring pipeline.
// Prompt text lives in embedded .tmpl files so it can be reviewed and edited
// without touching Go code.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed job_summary.tmpl
var jobSummary string

//go:embed qualifications.tmpl
var qualifications string

//go:embed section_rewrite.tmpl
var sectionRewrite string

//go:embed summary_rewrite.tmpl
var summaryRewrite string

//go:embed history_extract.tmpl
var historyExtract string

// JobSummary returns the system prompt that extracts the applicant-facing
// portion of a raw job posting.
func JobSummary() string { return strings.TrimSpace(jobSummary) }

// Qualifications returns the system prompt that distills a job description
// into a weighted JSON list of qualifications.
func Qualifications() string { return strings.TrimSpace(qualifications) }

// SectionRewrite returns the system prompt that rewrites one resume section
// as star-bulleted achievement lines.
func SectionRewrite() string { return strings.TrimSpace(sectionRewrite) }

// SummaryRewrite returns the system prompt that drafts a one-paragraph
// professional summary.
func SummaryRewrite() string { return strings.TrimSpace(summaryRewrite) }

// HistoryExtract returns the system prompt that parses job history entries
// out of raw resume text.
func HistoryExtract() string { return strings.TrimSpace(historyExtract) }

// SectionRewriteInput formats the user message for a section rewrite call.
func SectionRewriteInput(jobDescription, background string) string {
	return fmt.Sprintf("<Job Description>\n%s\n</Job Description>\n\n<Background>\n%s\n</Background>",
		strings.TrimSpace(jobDescription), strings.TrimSpace(background))
}

// SummaryRewriteInput formats the user message for a summary rewrite call.
func SummaryRewriteInput(jobDescription, resume string) string {
	return fmt.Sprintf("<Job Description>\n%s\n</Job Description>\n\n<Resume>\n%s\n</Resume>",
		strings.TrimSpace(jobDescription), strings.TrimSpace(resume))
}
