package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/automatize/proposals-service/internal/model"
)

// ProposalMeta is the slice of a proposal needed for authorization and
// blob cleanup before a mutation.
type ProposalMeta struct {
	ID        uuid.UUID
	CreatedBy *uuid.UUID
	DocLink   *string
}

type ProposalRepository interface {
	InsertProposal(ctx context.Context, proposal model.Proposal) (*model.Proposal, error)
	UpdateProposal(ctx context.Context, proposal model.Proposal) error
	DeleteProposal(ctx context.Context, id uuid.UUID) error
	GetProposalMeta(ctx context.Context, id uuid.UUID) (*ProposalMeta, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	ListProposals(ctx context.Context) ([]model.ProposalRow, error)

	ListOrderNumbers(ctx context.Context, proposalID uuid.UUID) ([]string, error)
	DeleteOrdersByNumbers(ctx context.Context, proposalID uuid.UUID, numbers []string) error
	InsertOrderWithItems(ctx context.Context, order model.Order) error
	UpdateOrderScalars(ctx context.Context, proposalID uuid.UUID, order model.Order) (uuid.UUID, error)
	ReplaceOrderItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
}

type Renderer interface {
	Render(doc model.ProposalDocument) ([]byte, error)
}

type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}
