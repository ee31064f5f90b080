package mysql

import (
	"context"
	"database/sql"
	"time"

	"famwish/internal/domain"
)

// MySQLBidArchive is the append-only record of accepted bids, written by the
// event listener as bids flow through the event channel. Rows are never
// updated or deleted. Aggregations over it back the leaderboard and charity
// projections.
type MySQLBidArchive struct {
	db *sql.DB
}

func NewMySQLBidArchive(db *sql.DB) *MySQLBidArchive {
	return &MySQLBidArchive{db: db}
}

func (r *MySQLBidArchive) ArchiveBid(ctx context.Context, event *domain.BidEvent) error {
	query := `
        INSERT INTO bid_events (auction_id, bidder_id, bidder_name, amount, event_type, timestamp, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.AuctionID, event.BidderID, event.BidderName, event.Amount,
		string(event.Type), event.Timestamp, time.Now())
	return err
}

// GetBidHistory returns accepted bids for an auction newest-first, matching
// the order of the live document's history.
func (r *MySQLBidArchive) GetBidHistory(ctx context.Context, auctionID string) ([]domain.Bid, error) {
	query := `
        SELECT bidder_id, bidder_name, amount, timestamp
        FROM bid_events
        WHERE auction_id = ? AND event_type = 'bid_accepted'
        ORDER BY timestamp DESC, amount DESC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var bid domain.Bid

		err := rows.Scan(&bid.BidderID, &bid.BidderName, &bid.Amount, &bid.Timestamp)
		if err != nil {
			return nil, err
		}

		bids = append(bids, bid)
	}

	return bids, rows.Err()
}

// TopBidders ranks bidders by total committed amount across all auctions.
func (r *MySQLBidArchive) TopBidders(ctx context.Context, limit int) ([]domain.BidderTotal, error) {
	query := `
        SELECT bidder_id, MAX(bidder_name), SUM(amount), COUNT(*)
        FROM bid_events
        WHERE event_type = 'bid_accepted'
        GROUP BY bidder_id
        ORDER BY SUM(amount) DESC
        LIMIT ?
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.BidderTotal
	for rows.Next() {
		var t domain.BidderTotal

		err := rows.Scan(&t.BidderID, &t.BidderName, &t.Total, &t.Bids)
		if err != nil {
			return nil, err
		}

		totals = append(totals, t)
	}

	return totals, rows.Err()
}

// CharityRaised sums the winning (highest) accepted bid of every auction
// benefiting the charity.
func (r *MySQLBidArchive) CharityRaised(ctx context.Context, charityID string) (int64, error) {
	query := `
        SELECT COALESCE(SUM(tops.top_amount), 0)
        FROM (
            SELECT be.auction_id, MAX(be.amount) AS top_amount
            FROM bid_events be
            JOIN auctions a ON a.id = be.auction_id
            WHERE a.charity_id = ? AND be.event_type = 'bid_accepted'
            GROUP BY be.auction_id
        ) tops
    `

	var raised int64
	if err := r.db.QueryRowContext(ctx, query, charityID).Scan(&raised); err != nil {
		return 0, err
	}

	return raised, nil
}
