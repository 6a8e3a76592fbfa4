package tailor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MoKho/resume-api-backend/internal/llm"
	"github.com/MoKho/resume-api-backend/internal/prompts"
	"github.com/MoKho/resume-api-backend/internal/textnorm"
)

// ExtractedHistory is one work engagement parsed out of free-form resume
// text.
type ExtractedHistory struct {
	Title        string   `json:"history_job_title"`
	Company      string   `json:"history_company_name"`
	Achievements []string `json:"history_job_achievements"`
}

// ExtractHistories parses pasted resume or work-history text into
// structured engagements using the model. Entries missing both a title and
// a company are dropped; an empty result is an error.
func ExtractHistories(ctx context.Context, gen llm.Generator, text string) ([]ExtractedHistory, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("history text is empty")
	}

	content, err := gen.Generate(ctx, llm.Request{
		System: prompts.HistoryExtract(),
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting histories: %w", err)
	}

	raw := extractJSONArray(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var entries []ExtractedHistory
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode histories: %w", err)
	}

	out := make([]ExtractedHistory, 0, len(entries))
	for _, e := range entries {
		e.Title = cleanHistoryField(e.Title)
		e.Company = cleanHistoryField(e.Company)
		if e.Title == "" && e.Company == "" {
			continue
		}
		achievements := make([]string, 0, len(e.Achievements))
		for _, a := range e.Achievements {
			if a = cleanHistoryField(a); a != "" {
				achievements = append(achievements, a)
			}
		}
		e.Achievements = achievements
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no job histories found in text")
	}
	return out, nil
}

func cleanHistoryField(s string) string {
	s, _ = textnorm.ToASCII(s)
	return strings.TrimSpace(s)
}
