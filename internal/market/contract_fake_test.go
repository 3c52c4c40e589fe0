package market

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/velora/submarket-gateway/internal/chain"
)

// fakeContract is an in-memory stand-in for the deployed marketplace
// contract.  Token ids are shared between content and subscriptions the way
// the real contract shares them: purchasing content id N grants the buyer
// token N.
type fakeContent struct {
	name     string
	hash     string
	creator  common.Address
	approved bool
}

type fakeContract struct {
	mu           sync.Mutex
	admin        common.Address
	price        *big.Int
	creatorsPool *big.Int
	platformPool *big.Int
	total        uint64
	content      map[uint64]*fakeContent // ids absent from the map are gaps
	tokens       map[common.Address][]uint64
	valid        map[uint64]bool
	expiry       map[uint64]uint64

	buyer       common.Address // account credited by PurchaseSubscription
	readErr     error          // when set, every read fails with it
	writeErr    error          // when set, every write fails with it
	totalGate   chan struct{}  // one TotalContent call blocks on this when set
	gateEntered chan struct{}  // closed once that call has started waiting
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		price:        big.NewInt(10_000_000_000_000_000), // 0.01 ether
		creatorsPool: big.NewInt(0),
		platformPool: big.NewInt(0),
		content:      map[uint64]*fakeContent{},
		tokens:       map[common.Address][]uint64{},
		valid:        map[uint64]bool{},
		expiry:       map[uint64]uint64{},
	}
}

// addContent installs a record at the next id and returns it.
func (f *fakeContract) addContent(name, hash string, creator common.Address, approved bool) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.total
	f.content[id] = &fakeContent{name: name, hash: hash, creator: creator, approved: approved}
	f.total++
	return id
}

// addGap burns an id so the dense range contains a hole.
func (f *fakeContract) addGap() {
	f.mu.Lock()
	f.total++
	f.mu.Unlock()
}

// grant gives owner a subscription token for content id.
func (f *fakeContract) grant(owner common.Address, tokenID uint64, valid bool, expiresAt uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[owner] = append(f.tokens[owner], tokenID)
	f.valid[tokenID] = valid
	f.expiry[tokenID] = expiresAt
}

func (f *fakeContract) takeGate() (gate, entered chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate, entered = f.totalGate, f.gateEntered
	f.totalGate, f.gateEntered = nil, nil
	return gate, entered
}

func (f *fakeContract) Admin(ctx context.Context) (common.Address, error) {
	if f.readErr != nil {
		return common.Address{}, f.readErr
	}
	return f.admin, nil
}

func (f *fakeContract) CreatorsPool(ctx context.Context) (*big.Int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.creatorsPool, nil
}

func (f *fakeContract) PlatformPool(ctx context.Context) (*big.Int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.platformPool, nil
}

func (f *fakeContract) SubscriptionPrice(ctx context.Context) (*big.Int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.price, nil
}

func (f *fakeContract) TotalContent(ctx context.Context) (uint64, error) {
	if g, entered := f.takeGate(); g != nil {
		if entered != nil {
			close(entered)
		}
		<-g
	}
	if f.readErr != nil {
		return 0, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, nil
}

func (f *fakeContract) ContentExists(ctx context.Context, tokenID uint64) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.content[tokenID]
	return ok, nil
}

func (f *fakeContract) ContentByTokenID(ctx context.Context, tokenID uint64) (string, string, common.Address, error) {
	if f.readErr != nil {
		return "", "", common.Address{}, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.content[tokenID]
	if !ok {
		return "", "", common.Address{}, chain.ErrChainRead
	}
	return c.name, c.hash, c.creator, nil
}

func (f *fakeContract) IsContentApproved(ctx context.Context, tokenID uint64) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.content[tokenID]
	return ok && c.approved, nil
}

func (f *fakeContract) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.tokens[owner])), nil
}

func (f *fakeContract) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (uint64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	held := f.tokens[owner]
	if index >= uint64(len(held)) {
		return 0, chain.ErrChainRead
	}
	return held[index], nil
}

func (f *fakeContract) IsSubscriptionValid(ctx context.Context, tokenID uint64) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid[tokenID], nil
}

func (f *fakeContract) ContentHashOfToken(ctx context.Context, tokenID uint64) (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.content[tokenID]; ok {
		return c.hash, nil
	}
	return "", chain.ErrChainRead
}

func (f *fakeContract) SubscriptionExpiry(ctx context.Context, tokenID uint64) (uint64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiry[tokenID], nil
}

func (f *fakeContract) RegisterContent(ctx context.Context, name, hash string, creator common.Address) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.addContent(name, hash, creator, false)
	return "0xreg", nil
}

func (f *fakeContract) ApproveContent(ctx context.Context, tokenID uint64) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.content[tokenID]
	if !ok {
		return "", chain.ErrChainWrite
	}
	c.approved = true
	return "0xapprove", nil
}

func (f *fakeContract) SetSubscriptionPrice(ctx context.Context, priceWei *big.Int) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.mu.Lock()
	f.price = priceWei
	f.mu.Unlock()
	return "0xprice", nil
}

func (f *fakeContract) PurchaseSubscription(ctx context.Context, tokenID uint64, value *big.Int) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.mu.Lock()
	buyer := f.buyer
	f.mu.Unlock()
	f.grant(buyer, tokenID, true, uint64(4_000_000_000)) // far future
	return "0xbuy", nil
}

func (f *fakeContract) WithdrawPlatformFunds(ctx context.Context) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.mu.Lock()
	f.platformPool = big.NewInt(0)
	f.mu.Unlock()
	return "0xwithdraw", nil
}
