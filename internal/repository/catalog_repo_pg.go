package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addonColumns = `id, name, category, description, price_cents, is_active, metadata`

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *PGCatalogRepository {
	return &PGCatalogRepository{db: db}
}

func (r *PGCatalogRepository) GetTicketType(ctx context.Context, id int64) (*domain.TicketType, error) {
	var t domain.TicketType
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, name, price_multiplier, base_baggage_allowance_kg FROM ticket_types WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.PriceMultiplier, &t.BaggageAllowanceKg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("get ticket type: %w", err)
	}
	return &t, nil
}

func (r *PGCatalogRepository) ListTicketTypes(ctx context.Context) ([]domain.TicketType, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, name, price_multiplier, base_baggage_allowance_kg FROM ticket_types ORDER BY price_multiplier, id`)
	if err != nil {
		return nil, fmt.Errorf("query ticket types: %w", err)
	}
	defer rows.Close()

	types := make([]domain.TicketType, 0)
	for rows.Next() {
		var t domain.TicketType
		if err := rows.Scan(&t.ID, &t.Name, &t.PriceMultiplier, &t.BaggageAllowanceKg); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *PGCatalogRepository) GetAddons(ctx context.Context, ids []int64) ([]domain.AddonOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+addonColumns+` FROM addon_options WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("query addons: %w", err)
	}
	return collectAddons(rows)
}

func (r *PGCatalogRepository) ListAddons(ctx context.Context, category domain.AddonCategory) ([]domain.AddonOption, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+addonColumns+` FROM addon_options
		WHERE is_active AND ($1::text = '' OR category = $1::text)
		ORDER BY category, name, price_cents`, string(category))
	if err != nil {
		return nil, fmt.Errorf("query addons: %w", err)
	}
	return collectAddons(rows)
}

func (r *PGCatalogRepository) CreateTicketType(ctx context.Context, t *domain.TicketType) error {
	if t.PriceMultiplier < 0 {
		return fmt.Errorf("%w: price multiplier must not be negative", domain.ErrInvalidInput)
	}
	if t.BaggageAllowanceKg == 0 {
		t.BaggageAllowanceKg = domain.DefaultBaggageAllowanceKg
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO ticket_types (name, price_multiplier, base_baggage_allowance_kg)
		VALUES ($1, $2, $3) RETURNING id`, t.Name, t.PriceMultiplier, t.BaggageAllowanceKg).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert ticket type %s: %w", t.Name, err)
	}
	return nil
}

func (r *PGCatalogRepository) CreateAddon(ctx context.Context, a *domain.AddonOption) error {
	if err := a.Validate(); err != nil {
		return err
	}
	metadata, err := a.Metadata.Encode()
	if err != nil {
		return err
	}
	err = conn(ctx, r.db).QueryRow(ctx, `INSERT INTO addon_options (name, category, description, price_cents, is_active, metadata)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Name, string(a.Category), a.Description, a.PriceCents, a.Active, metadata).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert addon %s: %w", a.Name, err)
	}
	return nil
}

func collectAddons(rows pgx.Rows) ([]domain.AddonOption, error) {
	defer rows.Close()

	addons := make([]domain.AddonOption, 0)
	for rows.Next() {
		var (
			a        domain.AddonOption
			category string
			raw      []byte
		)
		if err := rows.Scan(&a.ID, &a.Name, &category, &a.Description, &a.PriceCents, &a.Active, &raw); err != nil {
			return nil, fmt.Errorf("scan addon: %w", err)
		}
		a.Category = domain.AddonCategory(category)
		// Unreadable metadata leaves the add-on purchasable; pricing falls back to the name.
		if md, err := domain.DecodeAddonMetadata(a.Category, raw); err == nil {
			a.Metadata = md
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

var (
	_ CatalogRepository = (*PGCatalogRepository)(nil)
	_ CatalogWriter     = (*catalogWriter)(nil)
)

// catalogWriter joins the flight and catalog repositories for seeding.
type catalogWriter struct {
	*PGFlightRepository
	*PGCatalogRepository
}

func NewCatalogWriter(db *pgxpool.Pool) CatalogWriter {
	return &catalogWriter{
		PGFlightRepository:  NewFlightRepository(db),
		PGCatalogRepository: NewCatalogRepository(db),
	}
}
