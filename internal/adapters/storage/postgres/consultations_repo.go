package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"kaupod/internal/domain/consultations"
	"kaupod/internal/domain/status"
)

type ConsultationsRepo struct {
	db *sql.DB
}

func NewConsultationsRepo(db *sql.DB) *ConsultationsRepo {
	return &ConsultationsRepo{db: db}
}

func (r *ConsultationsRepo) Create(ctx context.Context, c consultations.Consultation) error {
	history, err := json.Marshal(c.History)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO consultations (
			id, user_id,
			mode, topic, phone, preferred_at,
			clinician_name, meeting_link,
			status, history,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		c.ID,
		c.UserID,
		string(c.Mode),
		c.Topic,
		c.Phone,
		c.PreferredAt,
		c.ClinicianName,
		c.MeetingLink,
		string(c.Status),
		history,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ConsultationsRepo) Update(ctx context.Context, c consultations.Consultation) error {
	history, err := json.Marshal(c.History)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE consultations
		SET
			mode = $2,
			topic = $3,
			phone = $4,
			preferred_at = $5,
			clinician_name = $6,
			meeting_link = $7,
			status = $8,
			history = $9,
			updated_at = $10
		WHERE id = $1
	`,
		c.ID,
		string(c.Mode),
		c.Topic,
		c.Phone,
		c.PreferredAt,
		c.ClinicianName,
		c.MeetingLink,
		string(c.Status),
		history,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ConsultationsRepo) GetByID(ctx context.Context, id string) (consultations.Consultation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return consultations.Consultation{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			mode, topic, phone, preferred_at,
			clinician_name, meeting_link,
			status, history,
			created_at, updated_at
		FROM consultations
		WHERE id = $1
	`, id)

	c, err := scanConsultation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return consultations.Consultation{}, ErrNotFound
		}
		return consultations.Consultation{}, err
	}
	return c, nil
}

func (r *ConsultationsRepo) ListByUser(ctx context.Context, userID string) ([]consultations.Consultation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			mode, topic, phone, preferred_at,
			clinician_name, meeting_link,
			status, history,
			created_at, updated_at
		FROM consultations
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConsultations(rows)
}

func (r *ConsultationsRepo) ListAll(ctx context.Context) ([]consultations.Consultation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			mode, topic, phone, preferred_at,
			clinician_name, meeting_link,
			status, history,
			created_at, updated_at
		FROM consultations
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConsultations(rows)
}

func scanConsultation(row rowScanner) (consultations.Consultation, error) {
	var c consultations.Consultation
	var mode, st string
	var history []byte

	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&mode,
		&c.Topic,
		&c.Phone,
		&c.PreferredAt,
		&c.ClinicianName,
		&c.MeetingLink,
		&st,
		&history,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return consultations.Consultation{}, err
	}

	c.Mode = consultations.Mode(mode)
	c.Status = status.Code(st)

	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.History); err != nil {
			return consultations.Consultation{}, err
		}
	}

	return c, nil
}

func collectConsultations(rows *sql.Rows) ([]consultations.Consultation, error) {
	out := make([]consultations.Consultation, 0)
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
