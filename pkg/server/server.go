package server

import (
	"net/http"
	"time"

	"github.com/artembek/auction/pkg/server/handler"
	"github.com/artembek/auction/pkg/server/middleware"
	"github.com/artembek/auction/pkg/service"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
)

func New(addr string, itemSvc service.Item, bidSvc service.Bid, userSvc service.User) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.Handle("/items", handler.ItemListPage(itemSvc))
	mux.Handle("/items/get", handler.ItemGet(itemSvc))
	mux.Handle("/items/create", handler.ItemCreate(itemSvc))
	mux.Handle("/items/publish", handler.ItemPublish(itemSvc))

	mux.Handle("/bid", handler.BidPlace(bidSvc))
	mux.Handle("/bids/item", handler.BidListByItem(bidSvc))
	mux.Handle("/bids/user", handler.BidListByUser(bidSvc))

	mux.Handle("/users/create", handler.UserCreate(userSvc))
	mux.Handle("/users/get", handler.UserGet(userSvc))
	mux.Handle("/users/deposit", handler.UserDeposit(userSvc))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
	}

	return &http.Server{
		Addr:         addr,
		Handler:      chain.Then(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}
