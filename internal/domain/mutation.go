package domain

// BidMutation describes the conditional update an accepted bid applies to an
// auction document. The store must apply every op atomically, and only if
// the precondition still holds against the stored document; otherwise it
// fails with ErrConflict and no effect.
//
// The op set is closed: set-field, increment-field and prepend-to-history
// are the only mutations a bid may perform, so stores interpret a small
// typed union instead of an untyped update document.
type BidMutation struct {
	Precondition Precondition
	Ops          []MutationOp
}

// Precondition is the optimistic guard: the stored CurrentHighBid must still
// equal the value the writer read.
type Precondition struct {
	ExpectedHighBid int64
}

type MutationOp interface {
	mutationOp()
}

// SetHighBid sets CurrentHighBid.
type SetHighBid struct {
	Amount int64
}

// SetTopBidder sets TopBidderID and TopBidderName.
type SetTopBidder struct {
	BidderID   string
	BidderName string
}

// IncrementBidCount adds Delta to BidCount.
type IncrementBidCount struct {
	Delta int
}

// PrependHistory inserts the bid at the front of BidHistory.
type PrependHistory struct {
	Bid Bid
}

func (SetHighBid) mutationOp()        {}
func (SetTopBidder) mutationOp()      {}
func (IncrementBidCount) mutationOp() {}
func (PrependHistory) mutationOp()    {}

// AcceptBid builds the full mutation for one accepted bid: guard on the high
// bid the writer read, then update every derived field and prepend the bid.
func AcceptBid(expectedHighBid int64, bid Bid) BidMutation {
	return BidMutation{
		Precondition: Precondition{ExpectedHighBid: expectedHighBid},
		Ops: []MutationOp{
			SetHighBid{Amount: bid.Amount},
			SetTopBidder{BidderID: bid.BidderID, BidderName: bid.BidderName},
			IncrementBidCount{Delta: 1},
			PrependHistory{Bid: bid},
		},
	}
}
