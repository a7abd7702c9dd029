package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workaid/internal/domain"
)

// FAQFilter captures FAQ listing parameters.
type FAQFilter struct {
	Department       *domain.Department
	IncludeSuggested bool
	SuggestedOnly    bool
	Limit            int
	Offset           int
}

// FAQRepository encapsulates FAQ persistence.
type FAQRepository interface {
	Create(ctx context.Context, faq *domain.FAQ) error
	Update(ctx context.Context, faq *domain.FAQ) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.FAQ, error)
	List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error)
	// ExistsWithSimilarQuestion reports whether any FAQ in the
	// department case-insensitively contains title in its question.
	ExistsWithSimilarQuestion(ctx context.Context, dept domain.Department, title string) (bool, error)
}

type faqRepository struct {
	pool *pgxpool.Pool
}

// NewFAQRepository instantiates repository.
func NewFAQRepository(pool *pgxpool.Pool) FAQRepository {
	return &faqRepository{pool: pool}
}

func (r *faqRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	const query = `
        INSERT INTO faqs (question, answer, department, created_by_staff_id, is_suggested, source_ticket_ids)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		faq.Question,
		faq.Answer,
		faq.Department,
		faq.CreatedByID,
		faq.IsSuggested,
		faq.SourceTicketIDs,
	).Scan(&faq.ID, &faq.CreatedAt, &faq.UpdatedAt)
}

func (r *faqRepository) Update(ctx context.Context, faq *domain.FAQ) error {
	const query = `
        UPDATE faqs SET question=$1, answer=$2, department=$3, created_by_staff_id=$4,
            is_suggested=$5, source_ticket_ids=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		faq.Question,
		faq.Answer,
		faq.Department,
		faq.CreatedByID,
		faq.IsSuggested,
		faq.SourceTicketIDs,
		faq.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *faqRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM faqs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *faqRepository) GetByID(ctx context.Context, id string) (*domain.FAQ, error) {
	const query = `
        SELECT id, question, answer, department, created_by_staff_id, is_suggested, source_ticket_ids, created_at, updated_at
        FROM faqs WHERE id=$1`
	var faq domain.FAQ
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&faq.ID,
		&faq.Question,
		&faq.Answer,
		&faq.Department,
		&faq.CreatedByID,
		&faq.IsSuggested,
		&faq.SourceTicketIDs,
		&faq.CreatedAt,
		&faq.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &faq, nil
}

func (r *faqRepository) List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error) {
	base := `SELECT id, question, answer, department, created_by_staff_id, is_suggested, source_ticket_ids, created_at, updated_at
             FROM faqs`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.SuggestedOnly {
		clauses = append(clauses, "is_suggested = TRUE")
	} else if !filter.IncludeSuggested {
		clauses = append(clauses, "is_suggested = FALSE")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FAQ
	for rows.Next() {
		var faq domain.FAQ
		if err := rows.Scan(
			&faq.ID,
			&faq.Question,
			&faq.Answer,
			&faq.Department,
			&faq.CreatedByID,
			&faq.IsSuggested,
			&faq.SourceTicketIDs,
			&faq.CreatedAt,
			&faq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, faq)
	}
	return result, rows.Err()
}

func (r *faqRepository) ExistsWithSimilarQuestion(ctx context.Context, dept domain.Department, title string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM faqs
            WHERE department=$1 AND question ILIKE '%' || $2 || '%'
        )`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, dept, title).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The suggested-FAQ uniqueness index surfaces through here.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
