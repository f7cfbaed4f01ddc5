package model

type Bid struct {
	Base
	ItemID     int  `json:"item_id"`
	UserID     int  `json:"user_id"`
	Amount     int  `json:"amount"`
	IsActive   bool `json:"is_active"`
	IsReturned bool `json:"is_returned"`
	IsPaid     bool `json:"is_paid"`
	IsWinner   bool `json:"is_winner"` // derived on read: id == item.winner_bid_id
}

// BidRef is the slice of a bid the settlement steps work with:
// the bid id, its amount and the user whose balance the amount goes to
// (the bidder for refunds, the item's creator for payouts).
type BidRef struct {
	ID       int
	Amount   int
	Creditee int
}

// WinnerPick pairs a finished item with its highest active bid.
type WinnerPick struct {
	ItemID int
	BidID  int
}
