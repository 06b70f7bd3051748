package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/automatize/proposals-service/internal/config"
	"github.com/automatize/proposals-service/internal/model"
)

type ProposalService struct {
	repo     ProposalRepository
	renderer Renderer
	blobs    BlobStore
	log      zerolog.Logger
}

func NewProposalService(repo ProposalRepository, renderer Renderer, blobs BlobStore, cfg *config.Config, log zerolog.Logger) *ProposalService {
	return &ProposalService{
		repo:     repo,
		renderer: renderer,
		blobs:    blobs,
		log:      log.With().Str("component", "proposal_service").Logger(),
	}
}

type CreateProposalInput struct {
	Proposal  ProposalInput
	Principal model.Principal
}

type CreateProposalResult struct {
	ProposalID uuid.UUID
	DocLink    string
	Message    string
}

type EditProposalInput struct {
	ProposalID uuid.UUID
	Proposal   ProposalInput
	Principal  model.Principal
}

type EditProposalResult struct {
	ProposalID uuid.UUID
	DocLink    string
	Message    string
	Warnings   []string
}

type DeleteProposalInput struct {
	ProposalID uuid.UUID
	Principal  model.Principal
}

type DeleteProposalResult struct {
	Message  string
	Warnings []string
}

// Create runs the create workflow: validate, render, upload, persist.
// Once the proposal row exists, any later failure deletes the row
// (cascading to partially inserted orders) and the uploaded blob before
// the error is surfaced.
func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (*CreateProposalResult, error) {
	if verr := validateProposal(input.Proposal); verr != nil {
		return nil, verr
	}
	if err := assertProposalShape(input.Proposal); err != nil {
		return nil, err
	}

	proposal := input.Proposal.toModel()
	if input.Principal.UserID != uuid.Nil {
		createdBy := input.Principal.UserID
		proposal.CreatedBy = &createdBy
	}

	content, err := s.renderer.Render(model.ProposalDocument{
		Proposal:       proposal,
		ShowItemValues: input.Proposal.ShowItemValues,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	docPath := deriveDocumentPath(proposal.CustomerName, proposal.ProposalDate, proposal.DocRevision, input.Proposal.Tag)
	docLink, err := s.blobs.Upload(ctx, docPath, content, "application/pdf", true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	comp := &compensator{}
	comp.add("delete uploaded document", func(ctx context.Context) error {
		return s.blobs.Delete(ctx, docPath)
	})

	proposal.DocLink = &docLink
	saved, err := s.repo.InsertProposal(ctx, proposal)
	if err != nil {
		comp.rollback(ctx, s.log)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	comp.add("delete proposal row", func(ctx context.Context) error {
		return s.repo.DeleteProposal(ctx, saved.ID)
	})

	for _, order := range proposal.Orders {
		order.ProposalID = saved.ID
		if err := s.repo.InsertOrderWithItems(ctx, order); err != nil {
			comp.rollback(ctx, s.log)
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	s.log.Info().
		Str("proposal_id", saved.ID.String()).
		Str("doc_path", docPath).
		Msg("proposal created")

	return &CreateProposalResult{
		ProposalID: saved.ID,
		DocLink:    docLink,
		Message:    "Proposta criada com sucesso!",
	}, nil
}

// Edit re-renders the document, updates the proposal scalars and
// reconciles the order set by order number: absent orders are deleted,
// new ones inserted with their items, existing ones updated with their
// item set fully replaced.
func (s *ProposalService) Edit(ctx context.Context, input EditProposalInput) (*EditProposalResult, error) {
	meta, err := s.repo.GetProposalMeta(ctx, input.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if verr := validateProposal(input.Proposal); verr != nil {
		return nil, verr
	}
	if err := assertProposalShape(input.Proposal); err != nil {
		return nil, err
	}

	proposal := input.Proposal.toModel()
	proposal.ID = input.ProposalID
	proposal.CreatedBy = meta.CreatedBy

	proposalID := input.ProposalID
	content, err := s.renderer.Render(model.ProposalDocument{
		ProposalID:     &proposalID,
		Proposal:       proposal,
		ShowItemValues: input.Proposal.ShowItemValues,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	oldPath := ""
	if meta.DocLink != nil {
		oldPath = blobPathFromURL(*meta.DocLink)
	}

	newPath := deriveDocumentPath(proposal.CustomerName, proposal.ProposalDate, proposal.DocRevision, input.Proposal.Tag)
	docLink, err := s.blobs.Upload(ctx, newPath, content, "application/pdf", true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	proposal.DocLink = &docLink
	if err := s.repo.UpdateProposal(ctx, proposal); err != nil {
		// The new blob is orphaned only when it landed on a fresh path;
		// on the old path it simply replaced the previous revision.
		if newPath != oldPath {
			if derr := s.blobs.Delete(ctx, newPath); derr != nil {
				s.log.Warn().Err(derr).Str("path", newPath).Msg("failed to remove new document after update failure")
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := s.reconcileOrders(ctx, input.ProposalID, proposal.Orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var warnings []string
	if oldPath != "" && oldPath != newPath {
		if err := s.blobs.Delete(ctx, oldPath); err != nil {
			s.log.Warn().Err(err).Str("path", oldPath).Msg("failed to delete previous document")
			warnings = append(warnings, fmt.Sprintf("documento anterior não foi removido: %s", oldPath))
		}
	}

	s.log.Info().
		Str("proposal_id", input.ProposalID.String()).
		Str("doc_path", newPath).
		Msg("proposal updated")

	return &EditProposalResult{
		ProposalID: input.ProposalID,
		DocLink:    docLink,
		Message:    "Proposta atualizada com sucesso!",
		Warnings:   warnings,
	}, nil
}

// reconcileOrders brings the stored order set in line with the submitted
// one. The order number is the natural key; items below it have none, so
// an existing order gets its items replaced wholesale.
func (s *ProposalService) reconcileOrders(ctx context.Context, proposalID uuid.UUID, incoming []model.Order) error {
	existingNumbers, err := s.repo.ListOrderNumbers(ctx, proposalID)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(existingNumbers))
	for _, number := range existingNumbers {
		existing[number] = true
	}
	submitted := make(map[string]bool, len(incoming))
	for _, order := range incoming {
		submitted[order.OrderNumber] = true
	}

	var toDelete []string
	for _, number := range existingNumbers {
		if !submitted[number] {
			toDelete = append(toDelete, number)
		}
	}
	if len(toDelete) > 0 {
		if err := s.repo.DeleteOrdersByNumbers(ctx, proposalID, toDelete); err != nil {
			return err
		}
	}

	for _, order := range incoming {
		order.ProposalID = proposalID
		if !existing[order.OrderNumber] {
			if err := s.repo.InsertOrderWithItems(ctx, order); err != nil {
				return err
			}
			continue
		}

		orderID, err := s.repo.UpdateOrderScalars(ctx, proposalID, order)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceOrderItems(ctx, orderID, order.Items); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the proposal row (the cascade takes orders and items
// with it) and then tries to remove the document blob. The database is
// the source of truth, so a failed blob delete is only a warning.
func (s *ProposalService) Delete(ctx context.Context, input DeleteProposalInput) (*DeleteProposalResult, error) {
	if input.Principal.IsZero() {
		return nil, ErrPermissionDenied
	}

	meta, err := s.repo.GetProposalMeta(ctx, input.ProposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	isCreator := meta.CreatedBy != nil && *meta.CreatedBy == input.Principal.UserID
	if !isCreator && !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if err := s.repo.DeleteProposal(ctx, input.ProposalID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var warnings []string
	if meta.DocLink != nil {
		if path := blobPathFromURL(*meta.DocLink); path != "" {
			if err := s.blobs.Delete(ctx, path); err != nil {
				s.log.Warn().Err(err).Str("path", path).Msg("failed to delete proposal document")
				warnings = append(warnings, fmt.Sprintf("documento não foi removido: %s", path))
			}
		}
	}

	s.log.Info().Str("proposal_id", input.ProposalID.String()).Msg("proposal deleted")

	return &DeleteProposalResult{
		Message:  "Proposta deletada com sucesso!",
		Warnings: warnings,
	}, nil
}

// List returns all proposals, newest first, with the creator display name
// and the total formatted for presentation. Pagination is left to the
// caller.
func (s *ProposalService) List(ctx context.Context) ([]model.ProposalRow, error) {
	rows, err := s.repo.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].TotalFormatted = formatBRL(rows[i].TotalValue)
	}
	return rows, nil
}

func (s *ProposalService) Get(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposal, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return proposal, nil
}
