package handlers

import (
	"context"
	"time"

	"auctions/models"
)

type StorageInterface interface {
	Ping(ctx context.Context) error

	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id int64) (*models.Auction, error)
	GetAuctionDetail(ctx context.Context, id int64) (*models.AuctionDetail, error)
	ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error)
	UpdateAuction(ctx context.Context, a *models.Auction) error
	UpdateAuctionStatus(ctx context.Context, id int64, status models.AuctionStatus) error
	MarkAuctionFinished(ctx context.Context, id int64, endsAt time.Time) error
	DeleteAuction(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, it *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItems(ctx context.Context, auctionID int64, limit, offset int) ([]models.Item, error)
	UpdateItem(ctx context.Context, it *models.Item) error
	DeleteItem(ctx context.Context, id int64) error

	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, limit, offset int) ([]models.Participant, error)
	UpdateParticipant(ctx context.Context, p *models.Participant) error
	DeleteParticipant(ctx context.Context, id int64) error

	GetBid(ctx context.Context, id int64) (*models.Bid, error)
	ListBids(ctx context.Context, itemID int64, limit, offset int) ([]models.Bid, error)
	DeleteBid(ctx context.Context, id int64) error

	CreateRule(ctx context.Context, r *models.Rule) error
	GetRule(ctx context.Context, id int64) (*models.Rule, error)
	ListRules(ctx context.Context, auctionID int64) ([]models.Rule, error)
	UpdateRule(ctx context.Context, r *models.Rule) error
	DeleteRule(ctx context.Context, id int64) error

	CreateMessageTemplate(ctx context.Context, m *models.MessageTemplate) error
	GetMessageTemplate(ctx context.Context, id int64) (*models.MessageTemplate, error)
	ListMessageTemplates(ctx context.Context, auctionID int64) ([]models.MessageTemplate, error)
	UpdateMessageTemplate(ctx context.Context, m *models.MessageTemplate) error
	DeleteMessageTemplate(ctx context.Context, id int64) error

	CreateMessagingGroup(ctx context.Context, g *models.MessagingGroup) error
	GetMessagingGroup(ctx context.Context, id int64) (*models.MessagingGroup, error)
	ListMessagingGroups(ctx context.Context, limit, offset int) ([]models.MessagingGroup, error)
	UpdateMessagingGroup(ctx context.Context, g *models.MessagingGroup) error
	DeleteMessagingGroup(ctx context.Context, id int64) error
}
