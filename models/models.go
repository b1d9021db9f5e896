package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus статус аукциона
type AuctionStatus string

const (
	StatusDraft     AuctionStatus = "DRAFT"
	StatusScheduled AuctionStatus = "SCHEDULED"
	StatusRunning   AuctionStatus = "RUNNING"
	StatusPaused    AuctionStatus = "PAUSED"
	StatusFinished  AuctionStatus = "FINISHED"
	StatusCancelled AuctionStatus = "CANCELLED"
)

// Valid сообщает, является ли значение известным статусом
func (s AuctionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusRunning, StatusPaused, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Closed true для финальных статусов
func (s AuctionStatus) Closed() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Сущность Аукциона
type Auction struct {
	ID          int64         `db:"id" json:"id"`
	Title       string        `db:"title" json:"title" validate:"required,max=200"`
	Description string        `db:"description" json:"description"`
	Status      AuctionStatus `db:"status" json:"status"`
	StartsAt    *time.Time    `db:"starts_at" json:"starts_at"`
	EndsAt      *time.Time    `db:"ends_at" json:"ends_at"`
	WAGroupID   *int64        `db:"wa_group_id" json:"wa_group_id,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// AuctionDetail аукцион вместе с вложенными сущностями
type AuctionDetail struct {
	Auction
	WAGroup  *MessagingGroup   `json:"wa_group"`
	Items    []Item            `json:"items"`
	Rules    []Rule            `json:"rules"`
	Messages []MessageTemplate `json:"messages"`
}

// Сущность Лота. Поля wa_* и claim_expires_at пишет только воркер мессенджера.
type Item struct {
	ID             int64           `db:"id" json:"id"`
	AuctionID      int64           `db:"auction_id" json:"auction"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Image          *string         `db:"image" json:"image"`
	BasePrice      decimal.Decimal `db:"base_price" json:"base_price"`
	Increment      decimal.Decimal `db:"increment" json:"increment"`
	Order          int             `db:"display_order" json:"order"`
	IsSold         bool            `db:"is_sold" json:"is_sold"`
	SoldTo         *int64          `db:"sold_to" json:"sold_to"`
	SoldAt         *time.Time      `db:"sold_at" json:"sold_at"`
	WAMessageID    *string         `db:"wa_message_id" json:"wa_message_id"`
	WAStanzaID     *string         `db:"wa_stanza_id" json:"wa_stanza_id"`
	ClaimExpiresAt *time.Time      `db:"claim_expires_at" json:"claim_expires_at"`

	HighestBid decimal.NullDecimal `db:"highest_bid" json:"highest_bid"`
	BidsCount  int                 `db:"bids_count" json:"bids_count"`
}

// Сущность Участника. Нужен хотя бы один из phone / wa_user_id.
type Participant struct {
	ID          int64   `db:"id" json:"id"`
	DisplayName string  `db:"display_name" json:"display_name" validate:"max=120"`
	Phone       *string `db:"phone" json:"phone" validate:"omitempty,max=32"`
	WAUserID    *string `db:"wa_user_id" json:"wa_user_id" validate:"omitempty,max=64"`
}

// Сущность Ставки. Создается только воркером мессенджера.
type Bid struct {
	ID              int64           `db:"id" json:"id"`
	ItemID          int64           `db:"item_id" json:"item"`
	ParticipantID   int64           `db:"participant_id" json:"-"`
	Participant     *Participant    `db:"-" json:"participant"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	IsValid         bool            `db:"is_valid" json:"is_valid"`
	SourceMessageID *string         `db:"source_message_id" json:"source_message_id"`
	SourceChatID    *string         `db:"source_chat_id" json:"source_chat_id"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Правило аукциона (ключ -> значение)
type Rule struct {
	ID        int64  `db:"id" json:"id"`
	AuctionID int64  `db:"auction_id" json:"auction"`
	Key       string `db:"key" json:"key" validate:"required,max=64"`
	Value     string `db:"value" json:"value"`
}

// Шаблон сообщения аукциона
type MessageTemplate struct {
	ID        int64  `db:"id" json:"id"`
	AuctionID int64  `db:"auction_id" json:"auction"`
	Key       string `db:"key" json:"key" validate:"required,max=64"`
	Template  string `db:"template" json:"template" validate:"required"`
}

// Группа в мессенджере, в которой проходит аукцион
type MessagingGroup struct {
	ID       int64  `db:"id" json:"id"`
	WAChatID string `db:"wa_chat_id" json:"wa_chat_id" validate:"required,max=128"`
	Name     string `db:"name" json:"name" validate:"max=200"`
}
