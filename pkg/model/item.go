package model

import (
	"database/sql"
	"time"
)

type ItemStatus string

const (
	ItemStatusDraft    ItemStatus = "DRAFT"
	ItemStatusOngoing  ItemStatus = "ONGOING"
	ItemStatusFinished ItemStatus = "FINISHED"
)

type Item struct {
	Base
	Name        string        `json:"name"`
	StartPrice  int           `json:"start_price"`
	TimeWindow  int           `json:"time_window"` // seconds from publish until the auction closes
	StartedAt   sql.NullTime  `json:"-"`
	Status      ItemStatus    `json:"status"`
	WinnerBidID sql.NullInt64 `json:"winner_bid_id,omitempty"`
	CreatedBy   int           `json:"created_by"`
}

// Due reports whether the item's bidding window has elapsed.
func (i *Item) Due(now time.Time) bool {
	return i.StartedAt.Valid && !now.Before(i.StartedAt.Time.Add(time.Duration(i.TimeWindow)*time.Second))
}
