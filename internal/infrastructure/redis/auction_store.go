package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"famwish/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RedisAuctionStore keeps each auction as a hash plus a bid-history list.
// The conditional update in ApplyBid runs as a single Lua eval, so
// concurrent writers on one auction are serialized by Redis and the
// precondition check and mutation cannot interleave.
type RedisAuctionStore struct {
	client *redis.Client
}

func NewRedisAuctionStore(client *redis.Client) *RedisAuctionStore {
	return &RedisAuctionStore{client: client}
}

func auctionKey(auctionID string) string {
	return fmt.Sprintf("auction:%s", auctionID)
}

func historyKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:history", auctionID)
}

func (r *RedisAuctionStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	err := r.client.HSet(ctx, auctionKey(auction.ID),
		"id", auction.ID,
		"title", auction.Title,
		"celebrity_id", auction.CelebrityID,
		"charity_id", auction.CharityID,
		"starting_bid", auction.StartingBid,
		"current_high_bid", auction.CurrentHighBid,
		"bid_count", auction.BidCount,
		"top_bidder_id", auction.TopBidderID,
		"top_bidder_name", auction.TopBidderName,
		"status", int(auction.Status),
		"end_date", auction.EndDate.Unix(),
		"created_at", auction.CreatedAt.Unix(),
		"updated_at", auction.UpdatedAt.Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("create auction %s: %w", auction.ID, wrapRedisErr(err))
	}
	return nil
}

// applyBidScript performs the whole accepted-bid mutation iff the stored
// current high bid still matches the value the writer read, and publishes
// the accepted event on the same eval. Returns {1, new_count} on success,
// {0, "conflict"} when the precondition fails, {-1} when the auction hash
// does not exist.
const applyBidScript = `
    local auction_key = "auction:" .. KEYS[1]
    local history_key = "auction:" .. KEYS[1] .. ":history"
    local current = redis.call('HGET', auction_key, 'current_high_bid')

    if current == false then
        return {-1}
    end

    if tonumber(current) ~= tonumber(ARGV[1]) then
        return {0, "conflict"}
    end

    redis.call('HSET', auction_key,
        'current_high_bid', ARGV[2],
        'top_bidder_id', ARGV[3],
        'top_bidder_name', ARGV[4],
        'updated_at', ARGV[6])
    local count = redis.call('HINCRBY', auction_key, 'bid_count', 1)
    redis.call('LPUSH', history_key, ARGV[5])
    redis.call('PUBLISH', 'auction_events', ARGV[7])

    return {1, count}
`

func (r *RedisAuctionStore) ApplyBid(ctx context.Context, auctionID string, m domain.BidMutation) (int, error) {
	var (
		highBid    int64
		bidderID   string
		bidderName string
		bid        domain.Bid
	)
	for _, op := range m.Ops {
		switch op := op.(type) {
		case domain.SetHighBid:
			highBid = op.Amount
		case domain.SetTopBidder:
			bidderID = op.BidderID
			bidderName = op.BidderName
		case domain.IncrementBidCount:
			if op.Delta != 1 {
				return 0, fmt.Errorf("apply bid to auction %s: bid count delta must be 1", auctionID)
			}
		case domain.PrependHistory:
			bid = op.Bid
		default:
			return 0, fmt.Errorf("apply bid to auction %s: unsupported mutation op %T", auctionID, op)
		}
	}

	bidJSON, err := json.Marshal(bid)
	if err != nil {
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, err)
	}

	event := domain.BidEvent{
		Type:       domain.BidAccepted,
		AuctionID:  auctionID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     highBid,
		Timestamp:  bid.Timestamp,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, err)
	}

	result, err := r.client.Eval(ctx, applyBidScript, []string{auctionID},
		m.Precondition.ExpectedHighBid,
		highBid,
		bidderID,
		bidderName,
		string(bidJSON),
		time.Now().Unix(),
		string(eventJSON),
	).Result()
	if err != nil {
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, wrapRedisErr(err))
	}

	resultSlice := result.([]interface{})
	switch resultSlice[0].(int64) {
	case 1:
		return int(resultSlice[1].(int64)), nil
	case 0:
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, domain.ErrConflict)
	default:
		return 0, fmt.Errorf("apply bid to auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}
}

func (r *RedisAuctionStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	fields, err := r.client.HGetAll(ctx, auctionKey(auctionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, wrapRedisErr(err))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}

	auction := &domain.Auction{
		ID:            fields["id"],
		Title:         fields["title"],
		CelebrityID:   fields["celebrity_id"],
		CharityID:     fields["charity_id"],
		TopBidderID:   fields["top_bidder_id"],
		TopBidderName: fields["top_bidder_name"],
	}
	auction.StartingBid, _ = strconv.ParseInt(fields["starting_bid"], 10, 64)
	auction.CurrentHighBid, _ = strconv.ParseInt(fields["current_high_bid"], 10, 64)
	auction.BidCount, _ = strconv.Atoi(fields["bid_count"])

	if status, err := strconv.Atoi(fields["status"]); err == nil {
		auction.Status = domain.AuctionStatus(status)
	}
	if endDate, err := strconv.ParseInt(fields["end_date"], 10, 64); err == nil {
		auction.EndDate = time.Unix(endDate, 0).UTC()
	}
	if createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		auction.CreatedAt = time.Unix(createdAt, 0).UTC()
	}
	if updatedAt, err := strconv.ParseInt(fields["updated_at"], 10, 64); err == nil {
		auction.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	}

	entries, err := r.client.LRange(ctx, historyKey(auctionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, wrapRedisErr(err))
	}
	for _, entry := range entries {
		var bid domain.Bid
		if err := json.Unmarshal([]byte(entry), &bid); err != nil {
			return nil, fmt.Errorf("get auction %s: corrupt history entry: %w", auctionID, err)
		}
		auction.BidHistory = append(auction.BidHistory, bid)
	}

	return auction, nil
}

func (r *RedisAuctionStore) SetStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	exists, err := r.client.Exists(ctx, auctionKey(auctionID)).Result()
	if err != nil {
		return fmt.Errorf("set status of auction %s: %w", auctionID, wrapRedisErr(err))
	}
	if exists == 0 {
		return fmt.Errorf("set status of auction %s: %w", auctionID, domain.ErrAuctionNotFound)
	}

	err = r.client.HSet(ctx, auctionKey(auctionID),
		"status", int(status),
		"updated_at", time.Now().Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("set status of auction %s: %w", auctionID, wrapRedisErr(err))
	}
	return nil
}

func (r *RedisAuctionStore) SetEndDate(ctx context.Context, auctionID string, endDate time.Time) error {
	err := r.client.HSet(ctx, auctionKey(auctionID),
		"end_date", endDate.Unix(),
		"updated_at", time.Now().Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("set end date of auction %s: %w", auctionID, wrapRedisErr(err))
	}
	return nil
}

// wrapRedisErr tags infrastructure failures so callers can distinguish a
// transient store outage from a business rejection.
func wrapRedisErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
