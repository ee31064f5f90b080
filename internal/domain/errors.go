package domain

import (
	"errors"
	"fmt"
)

// Store-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrConflict         = errors.New("lost bid race to a concurrent bidder")
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// Business-rule errors
var (
	ErrInvalidAmount = errors.New("bid amount must be positive")
	ErrForbidden     = errors.New("caller lacks bidding capability")
	ErrBidTooLow     = errors.New("bid amount too low")
	ErrAuctionClosed = errors.New("auction is not accepting bids")
)

// BidTooLowError reports the exact minimum the caller must bid so the user
// can correct and resubmit in one step. It matches ErrBidTooLow under
// errors.Is.
type BidTooLowError struct {
	MinRequiredBid int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low: minimum required bid is %d", e.MinRequiredBid)
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
