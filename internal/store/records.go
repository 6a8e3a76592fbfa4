package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Profile is a candidate's stored resume context. MasterResumeID points at
// the canonical resume document in the document service.
type Profile struct {
	ID             string
	MasterResumeID string
	BaseSummary    string
	UpdatedAt      time.Time
}

// JobHistory is one work engagement: the achievements currently on the
// resume (one per line when joined) and the richer background the rewrite
// step draws from.
type JobHistory struct {
	ID                 string
	ProfileID          string
	Company            string
	Title              string
	Achievements       []string
	DetailedBackground string
	UpdatedAt          time.Time
}

// Application statuses.
const (
	ApplicationDraft      = "draft"
	ApplicationProcessing = "processing"
	ApplicationCompleted  = "completed"
	ApplicationFailed     = "failed"
)

// Application ties a profile to one target job posting and accumulates the
// tailoring artifacts.
type Application struct {
	ID             string
	ProfileID      string
	JobDescription string
	HistoryIDs     []string
	ResumeDocID    string
	ArtifactID     string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UpsertProfile creates or replaces a profile.
func (s *Store) UpsertProfile(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, master_resume_id, base_summary, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			master_resume_id = excluded.master_resume_id,
			base_summary = excluded.base_summary,
			updated_at = excluded.updated_at
	`, p.ID, p.MasterResumeID, p.BaseSummary, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// GetProfile returns a profile by id.
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, master_resume_id, base_summary, updated_at FROM profiles WHERE id = ?
	`, id)

	var p Profile
	var updatedAt string
	err := row.Scan(&p.ID, &p.MasterResumeID, &p.BaseSummary, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing profile updated_at: %w", err)
	}
	return &p, nil
}

// UpsertJobHistory creates or replaces a job history.
func (s *Store) UpsertJobHistory(ctx context.Context, h *JobHistory) error {
	achievements, err := json.Marshal(h.Achievements)
	if err != nil {
		return fmt.Errorf("encoding achievements: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_histories (id, profile_id, company, title, achievements, detailed_background, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile_id = excluded.profile_id,
			company = excluded.company,
			title = excluded.title,
			achievements = excluded.achievements,
			detailed_background = excluded.detailed_background,
			updated_at = excluded.updated_at
	`, h.ID, h.ProfileID, h.Company, h.Title, string(achievements), h.DetailedBackground,
		formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upserting job history: %w", err)
	}
	return nil
}

// GetJobHistories returns the histories with the given ids, in no particular
// order. Missing ids are simply absent from the result.
func (s *Store) GetJobHistories(ctx context.Context, ids []string) ([]*JobHistory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]byte, 0, 2*len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, company, title, achievements, detailed_background, updated_at
		FROM job_histories WHERE id IN (`+string(placeholders)+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying job histories: %w", err)
	}
	defer rows.Close()

	var histories []*JobHistory
	for rows.Next() {
		var h JobHistory
		var achievements, updatedAt string
		if err := rows.Scan(&h.ID, &h.ProfileID, &h.Company, &h.Title,
			&achievements, &h.DetailedBackground, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning job history: %w", err)
		}
		if err := json.Unmarshal([]byte(achievements), &h.Achievements); err != nil {
			return nil, fmt.Errorf("decoding achievements: %w", err)
		}
		if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parsing job history updated_at: %w", err)
		}
		histories = append(histories, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job histories: %w", err)
	}
	return histories, nil
}

// CreateApplication persists a new application.
func (s *Store) CreateApplication(ctx context.Context, a *Application) error {
	historyIDs, err := json.Marshal(a.HistoryIDs)
	if err != nil {
		return fmt.Errorf("encoding history ids: %w", err)
	}
	now := formatTime(time.Now())
	status := a.Status
	if status == "" {
		status = ApplicationDraft
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, profile_id, job_description, history_ids, resume_doc_id, artifact_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProfileID, a.JobDescription, string(historyIDs), a.ResumeDocID, a.ArtifactID, status, now, now)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

// GetApplication returns an application by id.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, job_description, history_ids, resume_doc_id, artifact_id, status, created_at, updated_at
		FROM applications WHERE id = ?
	`, id)

	var a Application
	var historyIDs, createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.ProfileID, &a.JobDescription, &historyIDs,
		&a.ResumeDocID, &a.ArtifactID, &a.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	if err := json.Unmarshal([]byte(historyIDs), &a.HistoryIDs); err != nil {
		return nil, fmt.Errorf("decoding history ids: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing application created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing application updated_at: %w", err)
	}
	return &a, nil
}

// UpdateApplicationStatus moves an application to a new status, recording the
// tailored document and exported artifact when present.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id, status, resumeDocID, artifactID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET
			status = ?,
			resume_doc_id = CASE WHEN ? != '' THEN ? ELSE resume_doc_id END,
			artifact_id = CASE WHEN ? != '' THEN ? ELSE artifact_id END,
			updated_at = ?
		WHERE id = ?
	`, status, resumeDocID, resumeDocID, artifactID, artifactID, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating application %s: %w", id, ErrNotFound)
	}
	return nil
}
