package storage

import (
	"context"

	"github.com/planbar-app/planbar/internal/model"
	"github.com/planbar-app/planbar/libs/db"
)

// ReferenceRepository holds the client and project reference data synced in
// from the CRM. Rows are upserted by the consumer and read by the calendar
// and reporting handlers; this service never invents clients or projects.
type ReferenceRepository struct {
	pool *db.Pool
}

func NewReferenceRepository(pool *db.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

func (r *ReferenceRepository) UpsertClient(ctx context.Context, c model.Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (id, name, stripe_customer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			updated_at = now()
	`, c.ID, c.Name, c.StripeCustomerID)
	return err
}

func (r *ReferenceRepository) UpsertProject(ctx context.Context, p model.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, name, client_id, billing_type, custom_rate, package_tier)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			client_id = EXCLUDED.client_id,
			billing_type = EXCLUDED.billing_type,
			custom_rate = EXCLUDED.custom_rate,
			package_tier = EXCLUDED.package_tier,
			updated_at = now()
	`, p.ID, p.Name, p.ClientID, p.BillingType, p.CustomRate, p.PackageTier)
	return err
}

func (r *ReferenceRepository) GetProject(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, client_id, billing_type, COALESCE(custom_rate, 0), COALESCE(package_tier, ''), created_at
		FROM projects
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.ClientID, &p.BillingType, &p.CustomRate, &p.PackageTier, &p.CreatedAt)
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *ReferenceRepository) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(stripe_customer_id, ''), created_at
		FROM clients
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.StripeCustomerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return clients, nil
}

func (r *ReferenceRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, client_id, billing_type, COALESCE(custom_rate, 0), COALESCE(package_tier, ''), created_at
		FROM projects
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.BillingType, &p.CustomRate, &p.PackageTier, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return projects, nil
}
