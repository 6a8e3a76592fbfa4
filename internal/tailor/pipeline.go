// Package tailor implements the resume tailoring pipeline: analyze a job
// description, rewrite selected resume sections against it, patch the
// changes into a copy of the master resume document, and export the result
// as a PDF artifact.
package tailor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MoKho/resume-api-backend/internal/gdoc"
	"github.com/MoKho/resume-api-backend/internal/gdrive"
	"github.com/MoKho/resume-api-backend/internal/jobs"
	"github.com/MoKho/resume-api-backend/internal/llm"
	"github.com/MoKho/resume-api-backend/internal/prompts"
	"github.com/MoKho/resume-api-backend/internal/store"
	"github.com/MoKho/resume-api-backend/internal/textnorm"
)

// JobKind is the queue kind for tailoring jobs.
const JobKind = "tailor_resume"

// Payload is the JSON payload of a tailoring job.
type Payload struct {
	ApplicationID string `json:"application_id"`
}

// Output is the JSON result of a completed tailoring job.
type Output struct {
	ResumeDocID string `json:"resume_doc_id"`
	ArtifactID  string `json:"artifact_id"`
	Sections    int    `json:"sections_rewritten"`
}

// Storage is the slice of the persistence layer the pipeline needs.
type Storage interface {
	GetApplication(ctx context.Context, id string) (*store.Application, error)
	GetProfile(ctx context.Context, id string) (*store.Profile, error)
	GetJobHistories(ctx context.Context, ids []string) ([]*store.JobHistory, error)
	UpdateApplicationStatus(ctx context.Context, id, status, resumeDocID, artifactID string) error
}

// DocPatcher applies text replacements to a remote document.
type DocPatcher interface {
	ReplaceText(ctx context.Context, docID, original, replacement string, mode gdoc.Mode) (gdoc.Result, error)
	PrependText(ctx context.Context, docID, text string) error
	DocumentText(ctx context.Context, docID string) (string, error)
}

// Pipeline runs tailoring jobs end to end.
type Pipeline struct {
	storage  Storage
	gen      llm.Generator
	files    gdrive.FileService
	patcher  DocPatcher
	folderID string
	logger   *slog.Logger
}

// Config wires a pipeline's collaborators.
type Config struct {
	Storage Storage
	LLM     llm.Generator
	Files   gdrive.FileService
	Patcher DocPatcher
	// FolderID is the Drive folder receiving tailored copies and PDFs.
	FolderID string
	Logger   *slog.Logger
}

// New creates a tailoring pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		storage:  cfg.Storage,
		gen:      cfg.LLM,
		files:    cfg.Files,
		patcher:  cfg.Patcher,
		folderID: cfg.FolderID,
		logger:   logger.With("component", "tailor"),
	}
}

// Kind implements jobs.Handler.
func (p *Pipeline) Kind() string { return JobKind }

// Run implements jobs.Handler. A failure at any step marks the application
// failed before the error is returned to the worker.
func (p *Pipeline) Run(ctx context.Context, rec *jobs.Record) (json.RawMessage, error) {
	var payload Payload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload.ApplicationID == "" {
		return nil, fmt.Errorf("payload missing application_id")
	}

	out, err := p.tailor(ctx, payload.ApplicationID)
	if err != nil {
		if uerr := p.storage.UpdateApplicationStatus(ctx, payload.ApplicationID, store.ApplicationFailed, "", ""); uerr != nil {
			p.logger.Error("failed to mark application failed",
				"application_id", payload.ApplicationID, "error", uerr)
		}
		return nil, err
	}

	result, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return result, nil
}

func (p *Pipeline) tailor(ctx context.Context, appID string) (*Output, error) {
	app, err := p.storage.GetApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	profile, err := p.storage.GetProfile(ctx, app.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	histories, err := p.storage.GetJobHistories(ctx, app.HistoryIDs)
	if err != nil {
		return nil, fmt.Errorf("load job histories: %w", err)
	}

	if err := p.storage.UpdateApplicationStatus(ctx, appID, store.ApplicationProcessing, "", ""); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	docName := fmt.Sprintf("Tailored Resume - %s", appID)
	docID, err := p.files.CopyDocument(ctx, profile.MasterResumeID, docName, p.folderID)
	if err != nil {
		return nil, fmt.Errorf("duplicate master resume: %w", err)
	}
	p.logger.Info("working copy created", "application_id", appID, "doc_id", docID)

	summarizedJD, err := p.analyzeJobDescription(ctx, app.JobDescription)
	if err != nil {
		return nil, fmt.Errorf("analyze job description: %w", err)
	}

	sections, err := p.rewriteSections(ctx, docID, summarizedJD, histories)
	if err != nil {
		return nil, err
	}

	if err := p.rewriteSummary(ctx, docID, summarizedJD, profile.BaseSummary); err != nil {
		return nil, err
	}

	pdf, err := p.files.ExportPDF(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	artifactID, err := p.files.UploadPDF(ctx, docName+".pdf", p.folderID, pdf)
	if err != nil {
		return nil, fmt.Errorf("upload pdf: %w", err)
	}

	if err := p.storage.UpdateApplicationStatus(ctx, appID, store.ApplicationCompleted, docID, artifactID); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	p.logger.Info("tailoring completed",
		"application_id", appID, "doc_id", docID,
		"artifact_id", artifactID, "sections", sections)
	return &Output{ResumeDocID: docID, ArtifactID: artifactID, Sections: sections}, nil
}

// analyzeJobDescription extracts the applicant-facing portion of the raw
// posting and checks the model can distill qualifications from it. The
// qualification check catches postings the model cannot make sense of
// before any document edits happen.
func (p *Pipeline) analyzeJobDescription(ctx context.Context, jobDescription string) (string, error) {
	summary, err := p.gen.Generate(ctx, llm.Request{
		System: prompts.JobSummary(),
		Prompt: jobDescription,
	})
	if err != nil {
		return "", err
	}
	summary, _ = textnorm.ToASCII(summary)
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("empty job description summary")
	}

	qualsRaw, err := p.gen.Generate(ctx, llm.Request{
		System: prompts.Qualifications(),
		Prompt: summary,
	})
	if err != nil {
		return "", err
	}
	quals, err := ParseQualifications(qualsRaw)
	if err != nil {
		return "", err
	}
	p.logger.Debug("job description analyzed", "qualifications", len(quals))
	return summary, nil
}

// rewriteSections rewrites each selected job history and patches its
// achievements block in the document. A history with no detailed
// background or whose block cannot be located is skipped, not fatal.
func (p *Pipeline) rewriteSections(ctx context.Context, docID, summarizedJD string, histories []*store.JobHistory) (int, error) {
	var rewritten int
	for _, h := range histories {
		if strings.TrimSpace(h.DetailedBackground) == "" {
			p.logger.Info("skipping history without background", "history_id", h.ID)
			continue
		}
		if len(h.Achievements) == 0 {
			p.logger.Info("skipping history without achievements", "history_id", h.ID)
			continue
		}

		text, err := p.gen.Generate(ctx, llm.Request{
			System: prompts.SectionRewrite(),
			Prompt: prompts.SectionRewriteInput(summarizedJD, h.DetailedBackground),
		})
		if err != nil {
			return rewritten, fmt.Errorf("rewrite history %s: %w", h.ID, err)
		}
		text, _ = textnorm.ToASCII(text)
		text = textnorm.CollapseBlankLines(strings.TrimSpace(text))

		block := strings.Join(h.Achievements, "\n")
		res, err := p.patcher.ReplaceText(ctx, docID, block, text, gdoc.ModeFirst)
		if err != nil {
			return rewritten, fmt.Errorf("patch history %s: %w", h.ID, err)
		}
		if !res.Updated {
			p.logger.Warn("achievements block not found in document",
				"history_id", h.ID, "company", h.Company)
			continue
		}
		rewritten++
	}
	return rewritten, nil
}

// rewriteSummary generates a new professional summary and either replaces
// the stored base summary or, when none exists or it cannot be found,
// prepends the new one to the document.
func (p *Pipeline) rewriteSummary(ctx context.Context, docID, summarizedJD, baseSummary string) error {
	// The summary is drafted against the already-rewritten resume so it can
	// reference the tailored sections.
	resume, err := p.patcher.DocumentText(ctx, docID)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	summary, err := p.gen.Generate(ctx, llm.Request{
		System: prompts.SummaryRewrite(),
		Prompt: prompts.SummaryRewriteInput(summarizedJD, resume),
	})
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	summary, _ = textnorm.ToASCII(summary)
	summary = strings.TrimSpace(summary)

	if strings.TrimSpace(baseSummary) != "" {
		res, err := p.patcher.ReplaceText(ctx, docID, baseSummary, summary, gdoc.ModeFirst)
		if err != nil {
			return fmt.Errorf("replace summary: %w", err)
		}
		if res.Updated {
			return nil
		}
		p.logger.Warn("base summary not found in document, prepending instead", "doc_id", docID)
	}
	if err := p.patcher.PrependText(ctx, docID, summary); err != nil {
		return fmt.Errorf("prepend summary: %w", err)
	}
	return nil
}

var _ jobs.Handler = (*Pipeline)(nil)
