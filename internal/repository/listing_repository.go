package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stay-service/internal/domain"
)

// ListingRepository reads listings for the booking flow.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// GetForUpdate row-locks the listing until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Listing, error)
}

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingColumns = `id, host_id, title, price_per_night, max_guests, available, created_at, updated_at`

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1`
	return scanListing(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *listingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1 FOR UPDATE`
	return scanListing(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var listing domain.Listing
	if err := row.Scan(
		&listing.ID,
		&listing.HostID,
		&listing.Title,
		&listing.PricePerNight,
		&listing.MaxGuests,
		&listing.Available,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &listing, nil
}
