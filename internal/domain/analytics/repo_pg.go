package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Resolve(ctx, r.pool)
}

func (r *repoPG) VisitsPerPatient(ctx context.Context) ([]PatientVisitCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.first_name, p.last_name, COUNT(v.id) AS visit_count
		FROM patients p
		INNER JOIN visits v ON v.patient_id = p.id
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY visit_count DESC, p.last_name, p.first_name`)
	if err != nil {
		return nil, fmt.Errorf("query visits per patient: %w", err)
	}
	defer rows.Close()

	results := []PatientVisitCount{}
	for rows.Next() {
		var firstName, lastName string
		var count int
		if err := rows.Scan(&firstName, &lastName, &count); err != nil {
			return nil, fmt.Errorf("scan visits per patient: %w", err)
		}
		results = append(results, PatientVisitCount{
			Patient:    firstName + " " + lastName,
			VisitCount: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits per patient: %w", err)
	}

	return results, nil
}

func (r *repoPG) AverageLabResult(ctx context.Context, testType string) (*float64, error) {
	var avg *float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT AVG(result_value) FROM lab_results WHERE test_type = $1`, testType,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("query average lab result: %w", err)
	}
	return avg, nil
}
