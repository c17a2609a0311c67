package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/document/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists document types, requirements, and uploads in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateType(ctx context.Context, docType *models.DocumentType) error {
	query := `INSERT INTO document_types (id, name, is_active) VALUES ($1, $2, $3)`
	_, err := s.db.ExecContext(ctx, query, docType.ID.String(), docType.Name, docType.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create document type: %w", err)
	}
	return nil
}

func (s *Postgres) FindType(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentType, error) {
	query := `SELECT id, name, is_active FROM document_types WHERE id = $1`
	docType, err := scanType(s.db.QueryRowContext(ctx, query, typeID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document type: %w", err)
	}
	return docType, nil
}

func (s *Postgres) ListTypes(ctx context.Context) ([]*models.DocumentType, error) {
	query := `SELECT id, name, is_active FROM document_types ORDER BY name ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	var types []*models.DocumentType
	for rows.Next() {
		docType, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		types = append(types, docType)
	}
	return types, rows.Err()
}

func (s *Postgres) UpdateType(ctx context.Context, docType *models.DocumentType) error {
	query := `UPDATE document_types SET name = $2, is_active = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, docType.ID.String(), docType.Name, docType.IsActive)
	if err != nil {
		return fmt.Errorf("update document type: %w", err)
	}
	return requireRow(res)
}

// ReplaceRequirements swaps the full requirement set of a trip in one
// transaction. Uploads reference requirements with ON DELETE CASCADE, so
// dropping a requirement also drops its uploads.
func (s *Postgres) ReplaceRequirements(ctx context.Context, tripID id.TripID, reqs []*models.RequiredDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace requirements: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM required_documents WHERE trip_id = $1`, tripID.String()); err != nil {
		return fmt.Errorf("delete requirements: %w", err)
	}
	insert := `
		INSERT INTO required_documents (id, trip_id, doc_type_id, is_required, description, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, req := range reqs {
		_, err := tx.ExecContext(ctx, insert,
			req.ID.String(), req.TripID.String(), req.DocTypeID.String(),
			req.IsRequired, req.Description, nullTime(req.DueDate),
			req.CreatedAt, req.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("insert requirement: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace requirements: %w", err)
	}
	return nil
}

const requirementColumns = `r.id, r.trip_id, r.doc_type_id, t.name, r.is_required,
	r.description, r.due_date, r.created_at, r.updated_at`

func (s *Postgres) FindRequirement(ctx context.Context, reqID id.RequirementID) (*models.RequiredDocument, error) {
	query := `
		SELECT ` + requirementColumns + `
		FROM required_documents r
		JOIN document_types t ON t.id = r.doc_type_id
		WHERE r.id = $1
	`
	req, err := scanRequirement(s.db.QueryRowContext(ctx, query, reqID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return req, nil
}

func (s *Postgres) ListRequirements(ctx context.Context, tripID id.TripID) ([]*models.RequiredDocument, error) {
	query := `
		SELECT ` + requirementColumns + `
		FROM required_documents r
		JOIN document_types t ON t.id = r.doc_type_id
		WHERE r.trip_id = $1
		ORDER BY r.created_at ASC, t.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*models.RequiredDocument
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

const documentColumns = `id, trip_id, passenger_id, required_document_id, format, file_path,
	status, review_comment, uploaded_at, reviewed_at, created_at, updated_at, archived_at`

func (s *Postgres) CreateDocument(ctx context.Context, doc *models.PassengerDocument) error {
	query := `
		INSERT INTO passenger_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		doc.ID.String(), doc.TripID.String(), doc.PassengerID.String(),
		doc.RequirementID.String(), string(doc.Format), doc.FilePath,
		doc.Status.String(), nullString(doc.ReviewComment),
		nullTime(doc.UploadedAt), nullTime(doc.ReviewedAt),
		doc.CreatedAt, doc.UpdatedAt, nullTime(doc.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return sentinel.ErrConflict
			case "foreign_key_violation":
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("create passenger document: %w", err)
	}
	return nil
}

func (s *Postgres) FindDocument(ctx context.Context, docID id.PassengerDocumentID) (*models.PassengerDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM passenger_documents WHERE id = $1`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, docID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find passenger document: %w", err)
	}
	return doc, nil
}

func (s *Postgres) ListDocuments(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) ([]*models.PassengerDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM passenger_documents
		WHERE trip_id = $1 AND passenger_id = $2 AND archived_at IS NULL
		ORDER BY created_at DESC
	`
	return s.collectDocuments(ctx, query, tripID.String(), passengerID.String())
}

func (s *Postgres) ListTripDocuments(ctx context.Context, tripID id.TripID) ([]*models.PassengerDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM passenger_documents
		WHERE trip_id = $1 AND archived_at IS NULL
		ORDER BY created_at DESC
	`
	return s.collectDocuments(ctx, query, tripID.String())
}

func (s *Postgres) UpdateDocument(ctx context.Context, doc *models.PassengerDocument) error {
	query := `
		UPDATE passenger_documents
		SET status = $2, review_comment = $3, reviewed_at = $4, updated_at = $5, archived_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		doc.ID.String(), doc.Status.String(), nullString(doc.ReviewComment),
		nullTime(doc.ReviewedAt), doc.UpdatedAt, nullTime(doc.ArchivedAt))
	if err != nil {
		return fmt.Errorf("update passenger document: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) collectDocuments(ctx context.Context, query string, args ...any) ([]*models.PassengerDocument, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passenger documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.PassengerDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanType(row rowScanner) (*models.DocumentType, error) {
	var (
		docType models.DocumentType
		rawID   string
	)
	if err := row.Scan(&rawID, &docType.Name, &docType.IsActive); err != nil {
		return nil, err
	}
	var err error
	if docType.ID, err = id.ParseDocumentTypeID(rawID); err != nil {
		return nil, err
	}
	return &docType, nil
}

func scanRequirement(row rowScanner) (*models.RequiredDocument, error) {
	var (
		req                    models.RequiredDocument
		rawID, rawTrip, rawDoc string
		dueDate                sql.NullTime
	)
	err := row.Scan(&rawID, &rawTrip, &rawDoc, &req.DocTypeName, &req.IsRequired,
		&req.Description, &dueDate, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if req.ID, err = id.ParseRequirementID(rawID); err != nil {
		return nil, err
	}
	if req.TripID, err = id.ParseTripID(rawTrip); err != nil {
		return nil, err
	}
	if req.DocTypeID, err = id.ParseDocumentTypeID(rawDoc); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t := dueDate.Time
		req.DueDate = &t
	}
	return &req, nil
}

func scanDocument(row rowScanner) (*models.PassengerDocument, error) {
	var (
		doc                              models.PassengerDocument
		rawID, rawTrip, rawPax, rawReq   string
		format, status                   string
		reviewComment                    sql.NullString
		uploadedAt, reviewedAt, archived sql.NullTime
	)
	err := row.Scan(&rawID, &rawTrip, &rawPax, &rawReq, &format, &doc.FilePath,
		&status, &reviewComment, &uploadedAt, &reviewedAt,
		&doc.CreatedAt, &doc.UpdatedAt, &archived)
	if err != nil {
		return nil, err
	}
	if doc.ID, err = id.ParsePassengerDocumentID(rawID); err != nil {
		return nil, err
	}
	if doc.TripID, err = id.ParseTripID(rawTrip); err != nil {
		return nil, err
	}
	if doc.PassengerID, err = id.ParsePassengerID(rawPax); err != nil {
		return nil, err
	}
	if doc.RequirementID, err = id.ParseRequirementID(rawReq); err != nil {
		return nil, err
	}
	doc.Format = models.Format(format)
	doc.Status = models.Status(status)
	doc.ReviewComment = reviewComment.String
	if uploadedAt.Valid {
		t := uploadedAt.Time
		doc.UploadedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		doc.ReviewedAt = &t
	}
	if archived.Valid {
		t := archived.Time
		doc.ArchivedAt = &t
	}
	return &doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
