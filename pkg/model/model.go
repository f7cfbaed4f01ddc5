package model

import (
	"errors"
	"time"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrItemFinished        = errors.New("finished item cannot be bid")
	ErrOwnItem             = errors.New("cannot bid your own item")
	ErrBidTooLow           = errors.New("bid is not larger than current price")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOnCooldown          = errors.New("user already bid within cooldown window")
	ErrNotOwner            = errors.New("item belongs to another user")
	ErrNotDraft            = errors.New("only drafted item can be published")
)

type Base struct {
	ID        int       `json:"id"` // int/serial used for simplicity, in prod env uuid is more preferrable
	CreatedAt time.Time `json:"created_at"`
}
