package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famwish/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLAuctionRepository is the durable auction catalog. Live bidding state
// (high bid, history) lives in the document store; the catalog holds the
// listing itself and its lifecycle status.
type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

func (r *MySQLAuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, title, celebrity_id, charity_id, starting_bid, status, end_date, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.Title, auction.CelebrityID, auction.CharityID,
		auction.StartingBid, int(auction.Status), auction.EndDate,
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (r *MySQLAuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
        SELECT id, title, celebrity_id, charity_id, starting_bid, status, end_date, created_at, updated_at
        FROM auctions WHERE id = ?
    `

	var auction domain.Auction
	var status int

	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&auction.ID, &auction.Title, &auction.CelebrityID, &auction.CharityID,
		&auction.StartingBid, &status, &auction.EndDate,
		&auction.CreatedAt, &auction.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	return &auction, nil
}

func (r *MySQLAuctionRepository) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, int(status), time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) UpdateAuctionEndDate(ctx context.Context, auctionID string, endDate time.Time) error {
	query := `UPDATE auctions SET end_date = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, endDate, time.Now(), auctionID)
	return err
}

func (r *MySQLAuctionRepository) GetAuctionsByStatus(ctx context.Context, status domain.AuctionStatus) ([]*domain.Auction, error) {
	query := `
        SELECT id, title, celebrity_id, charity_id, starting_bid, status, end_date, created_at, updated_at
        FROM auctions WHERE status = ?
    `

	rows, err := r.db.QueryContext(ctx, query, int(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		var auction domain.Auction
		var rowStatus int

		err := rows.Scan(&auction.ID, &auction.Title, &auction.CelebrityID, &auction.CharityID,
			&auction.StartingBid, &rowStatus, &auction.EndDate,
			&auction.CreatedAt, &auction.UpdatedAt)
		if err != nil {
			return nil, err
		}

		auction.Status = domain.AuctionStatus(rowStatus)
		auctions = append(auctions, &auction)
	}

	return auctions, rows.Err()
}
