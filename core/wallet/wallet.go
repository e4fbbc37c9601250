package wallet

import "time"

type Tier string

const (
	TierLow   Tier = "low"
	TierMid   Tier = "mid"
	TierWhale Tier = "whale"
)

type Kind string

const (
	KindBuy      Kind = "buy"
	KindSell     Kind = "sell"
	KindTransfer Kind = "transfer"
)

type Wallet struct {
	ID        string    `json:"id" db:"wallet_id"`
	UserID    string    `json:"-" db:"user_id"`
	Address   string    `json:"address" db:"address"`
	Chain     string    `json:"chain" db:"chain"`
	Label     string    `json:"label" db:"label"`
	Balance   int64     `json:"balance" db:"balance"`
	Tier      Tier      `json:"tier" db:"tier"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type WalletNew struct {
	Address string `json:"address" validate:"required"`
	Chain   string `json:"chain" validate:"required"`
	Label   string `json:"label"`
	Balance int64  `json:"balance" validate:"gte=0"`
}

type Transaction struct {
	ID         string    `json:"id" db:"transaction_id"`
	WalletID   string    `json:"walletId" db:"wallet_id"`
	Kind       Kind      `json:"kind" db:"kind"`
	Amount     int64     `json:"amount" db:"amount"`
	Price      int64     `json:"price" db:"price"`
	OccurredAt time.Time `json:"occurredAt" db:"occurred_at"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type TransactionNew struct {
	Kind       Kind      `json:"kind" validate:"required,oneof=buy sell transfer"`
	Amount     int64     `json:"amount" validate:"required,ne=0"`
	Price      int64     `json:"price" validate:"gte=0"`
	OccurredAt time.Time `json:"occurredAt" validate:"required"`
}
