package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLDialect selects placeholder style and error decoding.
type SQLDialect string

const (
	DialectPostgres SQLDialect = "postgres"
	DialectSQLite   SQLDialect = "sqlite"
)

const pendingPairIndex = "uq_service_requests_pending_pair"

const serviceRequestColumns = `id, client_id, professional_id, description, estimated_budget, modality,
	address, district, postal_code, reference, service_date, urgency, additional_notes, photo_urls,
	state, requested_at, responded_at, updated_at, active`

var serviceRequestSchema = []string{
	`CREATE TABLE IF NOT EXISTS service_requests (
		id               TEXT PRIMARY KEY,
		client_id        BIGINT NOT NULL,
		professional_id  BIGINT NOT NULL,
		description      TEXT NOT NULL,
		estimated_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		modality         TEXT NOT NULL,
		address          TEXT NOT NULL DEFAULT '',
		district         TEXT NOT NULL DEFAULT '',
		postal_code      TEXT NOT NULL DEFAULT '',
		reference        TEXT NOT NULL DEFAULT '',
		service_date     TEXT NOT NULL,
		urgency          TEXT NOT NULL,
		additional_notes TEXT NOT NULL DEFAULT '',
		photo_urls       TEXT NOT NULL DEFAULT '[]',
		state            TEXT NOT NULL,
		requested_at     TEXT NOT NULL,
		responded_at     TEXT,
		updated_at       TEXT NOT NULL,
		active           BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_client ON service_requests (client_id, requested_at)`,
	`CREATE INDEX IF NOT EXISTS idx_service_requests_professional ON service_requests (professional_id, requested_at)`,
}

var strictPendingSchema = `CREATE UNIQUE INDEX IF NOT EXISTS ` + pendingPairIndex + `
	ON service_requests (client_id, professional_id) WHERE state = 'pending' AND active = TRUE`

// ServiceRequestSQLRepository persists ServiceRequest entities in PostgreSQL or SQLite.
//
// Timestamps are stored as fixed-width UTC text so ORDER BY requested_at works the
// same on both engines. photo_urls is a JSON array.
type ServiceRequestSQLRepository struct {
	db      *sql.DB
	dialect SQLDialect
}

var _ interfaces.IServiceRequestRepository = (*ServiceRequestSQLRepository)(nil)

func NewServiceRequestSQLRepository(db *sql.DB, dialect SQLDialect) *ServiceRequestSQLRepository {
	return &ServiceRequestSQLRepository{db: db, dialect: dialect}
}

// Migrate creates the table and indexes. With strict set it also adds a partial
// unique index allowing one active pending request per client and professional.
func (r *ServiceRequestSQLRepository) Migrate(ctx context.Context, strict bool) error {
	stmts := serviceRequestSchema
	if strict {
		stmts = append(append([]string{}, stmts...), strictPendingSchema)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

func (r *ServiceRequestSQLRepository) Create(ctx context.Context, sr entities.ServiceRequest) (entities.ServiceRequest, error) {
	if sr.ID == "" {
		sr.ID = uuid.NewString()
	}
	if sr.PhotoURLs == nil {
		sr.PhotoURLs = []string{}
	}
	photos, err := json.Marshal(sr.PhotoURLs)
	if err != nil {
		return entities.ServiceRequest{}, fmt.Errorf("encode photo_urls: %w", err)
	}

	var respondedAt sql.NullString
	if sr.RespondedAt != nil {
		respondedAt = sql.NullString{String: formatTimestamp(*sr.RespondedAt), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, r.rebind(`INSERT INTO service_requests (`+serviceRequestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sr.ID, sr.ClientID, sr.ProfessionalID, sr.Description, sr.EstimatedBudget, string(sr.Modality),
		sr.Address, sr.District, sr.PostalCode, sr.Reference, formatTimestamp(sr.ServiceDate), string(sr.Urgency),
		sr.AdditionalNotes, string(photos), string(sr.State), formatTimestamp(sr.RequestedAt), respondedAt,
		formatTimestamp(sr.UpdatedAt), sr.Active,
	)
	if err != nil {
		if r.isPendingPairViolation(err) {
			return entities.ServiceRequest{}, interfaces.ErrPendingRequestExists
		}
		return entities.ServiceRequest{}, err
	}
	return sr, nil
}

func (r *ServiceRequestSQLRepository) GetByID(ctx context.Context, id string) (entities.ServiceRequest, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+serviceRequestColumns+` FROM service_requests WHERE id = ?`), id)
	sr, err := scanServiceRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ServiceRequest{}, nil
	}
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	return sr, nil
}

func (r *ServiceRequestSQLRepository) ListByClient(ctx context.Context, clientID int64) ([]entities.ServiceRequest, error) {
	return r.listActive(ctx, "client_id", clientID)
}

func (r *ServiceRequestSQLRepository) ListByProfessional(ctx context.Context, professionalID int64) ([]entities.ServiceRequest, error) {
	return r.listActive(ctx, "professional_id", professionalID)
}

// listActive is only called with a fixed column name, never with caller input.
func (r *ServiceRequestSQLRepository) listActive(ctx context.Context, partyColumn string, partyID int64) ([]entities.ServiceRequest, error) {
	query := `SELECT ` + serviceRequestColumns + ` FROM service_requests
		WHERE ` + partyColumn + ` = ? AND active = TRUE
		ORDER BY requested_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), partyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]entities.ServiceRequest, 0)
	for rows.Next() {
		sr, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ServiceRequestSQLRepository) CountPending(ctx context.Context, clientID, professionalID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM service_requests
		WHERE client_id = ? AND professional_id = ? AND state = ? AND active = TRUE`),
		clientID, professionalID, string(entities.StatePending),
	).Scan(&n)
	return n, err
}

func (r *ServiceRequestSQLRepository) CountPendingByProfessional(ctx context.Context, professionalID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM service_requests
		WHERE professional_id = ? AND state = ? AND active = TRUE`),
		professionalID, string(entities.StatePending),
	).Scan(&n)
	return n, err
}

func (r *ServiceRequestSQLRepository) UpdateState(ctx context.Context, u interfaces.StateUpdate) (bool, error) {
	at := formatTimestamp(u.At)

	set := []string{"state = ?", "updated_at = ?"}
	args := []any{string(u.NewState), at}
	if u.SetRespondedAt {
		set = append(set, "responded_at = ?")
		args = append(args, at)
	}
	if u.Deactivate {
		set = append(set, "active = ?")
		args = append(args, false)
	}

	where := []string{"id = ?", "active = TRUE", "state = ?"}
	args = append(args, u.ID, string(u.ExpectedState))
	if u.ExpectedClientID != 0 {
		where = append(where, "client_id = ?")
		args = append(args, u.ExpectedClientID)
	}
	if u.ExpectedProfessionalID != 0 {
		where = append(where, "professional_id = ?")
		args = append(args, u.ExpectedProfessionalID)
	}

	query := `UPDATE service_requests SET ` + strings.Join(set, ", ") + ` WHERE ` + strings.Join(where, " AND ")
	res, err := r.db.ExecContext(ctx, r.rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (r *ServiceRequestSQLRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *ServiceRequestSQLRepository) isPendingPairViolation(err error) bool {
	switch r.dialect {
	case DialectPostgres:
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == pendingPairIndex
	case DialectSQLite:
		var sqlErr *sqlite.Error
		if !errors.As(err, &sqlErr) {
			return false
		}
		// primary key clashes report SQLITE_CONSTRAINT_PRIMARYKEY, and the
		// pending pair is the only other unique index on the table
		code := sqlErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqlErr.Error(), "professional_id"))
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServiceRequest(row rowScanner) (entities.ServiceRequest, error) {
	var sr entities.ServiceRequest
	var modality, urgency, state, photos string
	var serviceDate, requestedAt, updatedAt string
	var respondedAt sql.NullString
	err := row.Scan(
		&sr.ID, &sr.ClientID, &sr.ProfessionalID, &sr.Description, &sr.EstimatedBudget, &modality,
		&sr.Address, &sr.District, &sr.PostalCode, &sr.Reference, &serviceDate, &urgency,
		&sr.AdditionalNotes, &photos, &state, &requestedAt, &respondedAt, &updatedAt, &sr.Active,
	)
	if err != nil {
		return entities.ServiceRequest{}, err
	}

	sr.Modality = entities.ServiceModality(modality)
	sr.Urgency = entities.Urgency(urgency)
	sr.State = entities.RequestState(state)

	if sr.ServiceDate, err = parseTimestamp("service_date", serviceDate); err != nil {
		return entities.ServiceRequest{}, err
	}
	if sr.RequestedAt, err = parseTimestamp("requested_at", requestedAt); err != nil {
		return entities.ServiceRequest{}, err
	}
	if sr.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return entities.ServiceRequest{}, err
	}
	if respondedAt.Valid {
		if sr.RespondedAt, err = parseOptionalTimestamp("responded_at", respondedAt.String); err != nil {
			return entities.ServiceRequest{}, err
		}
	}
	if photos != "" {
		if err := json.Unmarshal([]byte(photos), &sr.PhotoURLs); err != nil {
			return entities.ServiceRequest{}, fmt.Errorf("decode photo_urls: %w", err)
		}
	}

	if err := checkDecoded(&sr); err != nil {
		return entities.ServiceRequest{}, err
	}
	return sr, nil
}
