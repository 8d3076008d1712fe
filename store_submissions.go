package folio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eringen/folio/mail"
)

const submissionColumns = `id, name, email, phone, story, preferred_contact, availability, timezone, social_links, status, notes, created_at, updated_at`

func scanSubmission(row scanner) (Submission, error) {
	var (
		s                Submission
		links, status    string
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Story, &s.PreferredContact,
		&s.Availability, &s.Timezone, &links, &status, &s.Notes, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(links), &s.SocialLinks); err != nil {
		return Submission{}, fmt.Errorf("submission %s social links: %w", s.ID, err)
	}
	if s.SocialLinks == nil {
		s.SocialLinks = []string{}
	}
	s.Status = SubmissionStatus(status)
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return s, nil
}

// CreateSubmission stores a new submission with a fresh ID and status new.
func (s *Store) CreateSubmission(sub Submission) (Submission, error) {
	sub.ID = uuid.NewString()
	sub.Status = SubmissionNew
	if sub.PreferredContact == "" {
		sub.PreferredContact = ContactEmail
	}
	if sub.SocialLinks == nil {
		sub.SocialLinks = []string{}
	}
	now := s.now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	links, err := json.Marshal(sub.SocialLinks)
	if err != nil {
		return Submission{}, err
	}
	_, err = s.db.Exec(`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Email, sub.Phone, sub.Story, sub.PreferredContact, sub.Availability,
		sub.Timezone, string(links), string(sub.Status), sub.Notes, formatTime(now), formatTime(now))
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(id string) (Submission, error) {
	return scanSubmission(s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
}

// ListSubmissions returns a page of submissions, newest first.
func (s *Store) ListSubmissions(f SubmissionFilter) ([]Submission, Pagination, error) {
	where := ""
	var args []any
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, Pagination{}, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
		}
		where = " WHERE status = ?"
		args = append(args, string(f.Status))
	}
	var total int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions`+where, args...).Scan(&total); err != nil {
		return nil, Pagination{}, err
	}
	p := newPagination(total, f.Page, f.Size)
	rows, err := s.db.Query(`SELECT `+submissionColumns+` FROM submissions`+where+
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, append(args, p.Size, (p.CurrentPage-1)*p.Size)...)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer rows.Close()
	subs := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, Pagination{}, err
		}
		subs = append(subs, sub)
	}
	return subs, p, rows.Err()
}

// SubmissionPatch holds the admin-editable fields of a submission. Nil
// fields are left unchanged.
type SubmissionPatch struct {
	Status *SubmissionStatus `json:"status"`
	Notes  *string           `json:"notes"`
}

// UpdateSubmission applies patch and returns the updated submission. Any
// status in the enum is accepted regardless of the current one.
func (s *Store) UpdateSubmission(id string, patch SubmissionPatch) (Submission, error) {
	var sets []string
	var args []any
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return Submission{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, strings.TrimSpace(*patch.Notes))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(s.now()), id)
	res, err := s.db.Exec(`UPDATE submissions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return Submission{}, err
	}
	if err := requireAffected(res); err != nil {
		return Submission{}, err
	}
	return s.GetSubmission(id)
}

// DeleteSubmission removes a submission.
func (s *Store) DeleteSubmission(id string) error {
	res, err := s.db.Exec(`DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Enqueue stores msg in the outbox table. Messages without recipients
// are dropped.
func (s *Store) Enqueue(ctx context.Context, msg mail.Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	to, err := json.Marshal(msg.To)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO outbox (recipients, subject, html, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(to), msg.Subject, msg.HTML, msg.Text, formatTime(s.now()))
	return err
}

// ListOutbox returns a page of stored messages, newest first.
func (s *Store) ListOutbox(page, size int) ([]OutboxMessage, Pagination, error) {
	var total int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM outbox`).Scan(&total); err != nil {
		return nil, Pagination{}, err
	}
	p := newPagination(total, page, size)
	rows, err := s.db.Query(`SELECT id, recipients, subject, html, text, created_at FROM outbox
		ORDER BY id DESC LIMIT ? OFFSET ?`, p.Size, (p.CurrentPage-1)*p.Size)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer rows.Close()
	msgs := []OutboxMessage{}
	for rows.Next() {
		var m OutboxMessage
		var to, created string
		if err := rows.Scan(&m.ID, &to, &m.Subject, &m.HTML, &m.Text, &created); err != nil {
			return nil, Pagination{}, err
		}
		if err := json.Unmarshal([]byte(to), &m.To); err != nil {
			return nil, Pagination{}, fmt.Errorf("outbox %d recipients: %w", m.ID, err)
		}
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}
	return msgs, p, rows.Err()
}
