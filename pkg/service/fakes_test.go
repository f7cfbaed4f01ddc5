package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/model"
)

// memStore is an in-memory ledger implementing the repository contracts,
// including the cursor paging semantics of the settlement queries. The
// *sql.Tx arguments are ignored; transactions are provided by sqlmock.
type memStore struct {
	items    map[int]*model.Item
	bids     map[int]*model.Bid
	users    map[int]*model.User
	now      time.Time
	nextBid  int
	nextItem int
	nextUser int
}

func newMemStore() *memStore {
	return &memStore{
		items:    make(map[int]*model.Item),
		bids:     make(map[int]*model.Bid),
		users:    make(map[int]*model.User),
		now:      time.Now(),
		nextBid:  1,
		nextItem: 1,
		nextUser: 1,
	}
}

func (m *memStore) addUser(balance int) int {
	id := m.nextUser
	m.nextUser++
	m.users[id] = &model.User{Base: model.Base{ID: id}, Balance: balance}
	return id
}

func (m *memStore) addItem(startPrice, timeWindow, createdBy int, status model.ItemStatus, startedAt time.Time) int {
	id := m.nextItem
	m.nextItem++
	m.items[id] = &model.Item{
		Base:       model.Base{ID: id},
		StartPrice: startPrice,
		TimeWindow: timeWindow,
		Status:     status,
		StartedAt:  sql.NullTime{Time: startedAt, Valid: !startedAt.IsZero()},
		CreatedBy:  createdBy,
	}
	return id
}

func (m *memStore) addBid(itemID, userID, amount int, active bool) int {
	id := m.nextBid
	m.nextBid++
	m.bids[id] = &model.Bid{
		Base:     model.Base{ID: id},
		ItemID:   itemID,
		UserID:   userID,
		Amount:   amount,
		IsActive: active,
	}
	return id
}

func (m *memStore) balance(userID int) int {
	return m.users[userID].Balance
}

// --- database.ItemRepository ---

func (m *memStore) Create(ctx context.Context, name string, startPrice, timeWindow, createdBy int) (int, error) {
	id := m.addItem(startPrice, timeWindow, createdBy, model.ItemStatusDraft, time.Time{})
	m.items[id].Name = name
	return id, nil
}

func (m *memStore) Get(ctx context.Context, id int) (model.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return model.Item{}, database.ErrNotFound
	}
	return *item, nil
}

func (m *memStore) GetPage(ctx context.Context, num, size int) ([]model.Item, int, error) {
	items := make([]model.Item, 0, len(m.items))
	for _, item := range m.items {
		if item.Status != model.ItemStatusDraft {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, len(items), nil
}

func (m *memStore) Publish(ctx context.Context, id int) error {
	item, ok := m.items[id]
	if !ok || item.Status != model.ItemStatusDraft {
		return model.ErrNotDraft
	}
	item.Status = model.ItemStatusOngoing
	item.StartedAt = sql.NullTime{Time: m.now, Valid: true}
	return nil
}

func (m *memStore) GetForBidding(ctx context.Context, tx *sql.Tx, id int) (model.Item, error) {
	item, ok := m.items[id]
	if !ok || item.Status == model.ItemStatusDraft {
		return model.Item{}, database.ErrNotFound
	}
	return *item, nil
}

func (m *memStore) FinishPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]int, error) {
	ids := []int{}
	for id, item := range m.items {
		if item.Status == model.ItemStatusOngoing && item.Due(m.now) && id >= cursor {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memStore) MarkFinished(ctx context.Context, tx *sql.Tx, ids []int) error {
	for _, id := range ids {
		if item := m.items[id]; item.Status == model.ItemStatusOngoing {
			item.Status = model.ItemStatusFinished
		}
	}
	return nil
}

func (m *memStore) WinnerCandidates(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.WinnerPick, error) {
	picks := []model.WinnerPick{}
	for itemID, item := range m.items {
		if item.Status != model.ItemStatusFinished || item.WinnerBidID.Valid || itemID < cursor {
			continue
		}

		best := 0
		for bidID, bid := range m.bids {
			if bid.ItemID == itemID && bid.IsActive {
				if best == 0 || bid.Amount > m.bids[best].Amount {
					best = bidID
				}
			}
		}

		if best != 0 {
			picks = append(picks, model.WinnerPick{ItemID: itemID, BidID: best})
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].ItemID < picks[j].ItemID })
	if len(picks) > limit {
		picks = picks[:limit]
	}
	return picks, nil
}

func (m *memStore) SetWinner(ctx context.Context, tx *sql.Tx, itemID, bidID int) error {
	if item := m.items[itemID]; !item.WinnerBidID.Valid {
		item.WinnerBidID = sql.NullInt64{Int64: int64(bidID), Valid: true}
	}
	return nil
}

// --- database.BidRepository ---

func (m *memStore) Insert(ctx context.Context, tx *sql.Tx, userID, itemID, amount int) (int, error) {
	return m.addBid(itemID, userID, amount, true), nil
}

func (m *memStore) Highest(ctx context.Context, tx *sql.Tx, itemID int) (int, error) {
	highest := 0
	for _, bid := range m.bids {
		if bid.ItemID == itemID && bid.Amount > highest {
			highest = bid.Amount
		}
	}
	return highest, nil
}

func (m *memStore) DeactivatePrev(ctx context.Context, tx *sql.Tx, itemID, userID int) (int, error) {
	for _, bid := range m.bids {
		if bid.ItemID == itemID && bid.UserID == userID && bid.IsActive {
			bid.IsActive = false
			bid.IsReturned = true
			return bid.Amount, nil
		}
	}
	return 0, nil
}

func (m *memStore) GetPageByItem(ctx context.Context, itemID, num, size int) ([]model.Bid, int, error) {
	bids := []model.Bid{}
	for _, bid := range m.bids {
		if bid.ItemID == itemID {
			bids = append(bids, *bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID > bids[j].ID })
	return bids, len(bids), nil
}

func (m *memStore) GetPageByUser(ctx context.Context, userID int, onlyActive bool, num, size int) ([]model.Bid, int, error) {
	bids := []model.Bid{}
	for _, bid := range m.bids {
		if bid.UserID == userID && (!onlyActive || bid.IsActive) {
			bids = append(bids, *bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID > bids[j].ID })
	return bids, len(bids), nil
}

func (m *memStore) RefundPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error) {
	refs := []model.BidRef{}
	for id, bid := range m.bids {
		item := m.items[bid.ItemID]
		if bid.IsActive && !bid.IsReturned && item.WinnerBidID.Valid &&
			int(item.WinnerBidID.Int64) != id && id >= cursor {
			refs = append(refs, model.BidRef{ID: id, Amount: bid.Amount, Creditee: bid.UserID})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (m *memStore) MarkReturned(ctx context.Context, tx *sql.Tx, ids []int) error {
	for _, id := range ids {
		m.bids[id].IsReturned = true
	}
	return nil
}

func (m *memStore) PayPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error) {
	refs := []model.BidRef{}
	for id, bid := range m.bids {
		item := m.items[bid.ItemID]
		if bid.IsActive && !bid.IsPaid && item.WinnerBidID.Valid &&
			int(item.WinnerBidID.Int64) == id && id >= cursor {
			refs = append(refs, model.BidRef{ID: id, Amount: bid.Amount, Creditee: item.CreatedBy})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (m *memStore) MarkPaid(ctx context.Context, tx *sql.Tx, ids []int) error {
	for _, id := range ids {
		m.bids[id].IsPaid = true
	}
	return nil
}

// --- database.UserRepository ---

func (m *memStore) CreateUser(ctx context.Context, username string) (int, error) {
	id := m.addUser(0)
	m.users[id].Username = username
	return id, nil
}

func (m *memStore) GetUser(ctx context.Context, id int) (model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return model.User{}, database.ErrNotFound
	}
	return *user, nil
}

func (m *memStore) GetTx(ctx context.Context, tx *sql.Tx, id int) (model.User, error) {
	return m.GetUser(ctx, id)
}

func (m *memStore) Deposit(ctx context.Context, id, amount int) error {
	user, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Balance += amount
	return nil
}

func (m *memStore) Debit(ctx context.Context, tx *sql.Tx, id, delta int) error {
	m.users[id].Balance -= delta
	return nil
}

func (m *memStore) Credit(ctx context.Context, tx *sql.Tx, credits map[int]int) error {
	for id, amount := range credits {
		m.users[id].Balance += amount
	}
	return nil
}

// userRepo adapts memStore to database.UserRepository, whose Create/Get
// collide with the item methods.
type userRepo struct {
	*memStore
}

func (u userRepo) Create(ctx context.Context, username string) (int, error) {
	return u.memStore.CreateUser(ctx, username)
}

func (u userRepo) Get(ctx context.Context, id int) (model.User, error) {
	return u.memStore.GetUser(ctx, id)
}

// fakeGate is a hand-rolled cooldown double.
type fakeGate struct {
	active    bool
	activeErr error
	setErr    error
	setCalls  int
}

func (g *fakeGate) Active(ctx context.Context, userID int) (bool, error) {
	return g.active, g.activeErr
}

func (g *fakeGate) Set(ctx context.Context, userID int) error {
	g.setCalls++
	return g.setErr
}

// txDB returns a sqlmock-backed DB expecting up to n begin/commit pairs.
// Settlement fakes never touch the tx, so only the begin/commit protocol
// is asserted here.
func txDB(n int) (*sql.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	return db, mock, nil
}

// txDBRollback expects a single transaction that rolls back.
func txDBRollback() (*sql.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	return db, mock, nil
}
