package model

type User struct {
	Base
	Username string `json:"username"`
	Balance  int    `json:"balance"` // kept non-negative by bid preconditions, not by a DB constraint
}
