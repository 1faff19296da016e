package model

import "time"

// PurchaseType is the kind of thing a purchase sells.
type PurchaseType string

const (
	PurchaseGame          PurchaseType = "game_purchase"
	PurchaseInGame        PurchaseType = "in_game_purchase"
	PurchaseSubscriptions PurchaseType = "subscriptions"
	PurchaseDLC           PurchaseType = "dlc"
	PurchaseEtc           PurchaseType = "etc"
)

// Purchase is a catalog record of something purchasable for a game.
type Purchase struct {
	PID          int64        `gorm:"column:pid;primaryKey;autoIncrement" json:"pid"`
	GID          int64        `gorm:"column:gid;not null;index:idx_purchases_gid" json:"gid"`
	PurchaseType PurchaseType `gorm:"column:purchase_type;size:32;not null" json:"purchase_type"`
	Price        float64      `gorm:"column:price;not null" json:"price"`
	Descr        *string      `gorm:"column:descr;type:text" json:"descr,omitempty"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Purchase) TableName() string { return "purchases" }

// Transaction is an append-only ledger entry for a completed purchase.
type Transaction struct {
	TID           int64     `gorm:"column:tid;primaryKey;autoIncrement" json:"tid"`
	UID           int64     `gorm:"column:uid;not null;index:idx_transactions_uid" json:"uid"`
	ReceiverUID   int64     `gorm:"column:receiver_uid;not null" json:"receiver_uid"`
	PID           int64     `gorm:"column:pid;not null" json:"pid"`
	PaymentMethod string    `gorm:"column:payment_method;size:32;not null" json:"payment_method"`
	Amount        int64     `gorm:"column:amount;not null" json:"amount"`
	BoughtAt      time.Time `gorm:"column:bought_at;not null" json:"bought_at"`
	Status        *string   `gorm:"column:status;size:32" json:"status,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }
