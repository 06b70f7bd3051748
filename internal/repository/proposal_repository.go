package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/automatize/proposals-service/internal/model"
	"github.com/automatize/proposals-service/internal/service"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) InsertProposal(ctx context.Context, proposal model.Proposal) (*model.Proposal, error) {
	var saved model.Proposal
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO proposals (
			customer_name,
			proposal_date,
			total_value,
			payment_condition,
			project_type,
			doc_revision,
			execution_time,
			tag,
			city,
			doc_link,
			created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING
			id,
			customer_name,
			proposal_date,
			total_value,
			payment_condition,
			project_type,
			doc_revision,
			execution_time,
			tag,
			city,
			doc_link,
			created_by,
			created_at,
			updated_at
	`,
		proposal.CustomerName,
		proposal.ProposalDate,
		proposal.TotalValue,
		proposal.PaymentCondition,
		proposal.ProjectType,
		proposal.DocRevision,
		proposal.ExecutionTime,
		proposal.Tag,
		proposal.City,
		proposal.DocLink,
		proposal.CreatedBy,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ProposalRepository) UpdateProposal(ctx context.Context, proposal model.Proposal) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE proposals
		SET
			customer_name = ?,
			proposal_date = ?,
			total_value = ?,
			payment_condition = ?,
			project_type = ?,
			doc_revision = ?,
			execution_time = ?,
			tag = ?,
			city = ?,
			doc_link = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		proposal.CustomerName,
		proposal.ProposalDate,
		proposal.TotalValue,
		proposal.PaymentCondition,
		proposal.ProjectType,
		proposal.DocRevision,
		proposal.ExecutionTime,
		proposal.Tag,
		proposal.City,
		proposal.DocLink,
		proposal.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProposal relies on the cascade constraints to take the orders and
// items along with the row.
func (r *ProposalRepository) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM proposals WHERE id = ?`, id).Error
}

func (r *ProposalRepository) GetProposalMeta(ctx context.Context, id uuid.UUID) (*service.ProposalMeta, error) {
	var meta service.ProposalMeta
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, created_by, doc_link
		FROM proposals
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&meta).Error
	if err != nil {
		return nil, err
	}
	if meta.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &meta, nil
}

func (r *ProposalRepository) ListOrderNumbers(ctx context.Context, proposalID uuid.UUID) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT order_number
		FROM orders
		WHERE proposal_id = ?
		ORDER BY created_at ASC
	`, proposalID).Scan(&numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *ProposalRepository) DeleteOrdersByNumbers(ctx context.Context, proposalID uuid.UUID, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM orders
		WHERE proposal_id = ? AND order_number IN ?
	`, proposalID, numbers).Error
}

func (r *ProposalRepository) InsertOrderWithItems(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderID uuid.UUID
		err := tx.Raw(`
			INSERT INTO orders (proposal_id, order_number, description, value, service_description)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`,
			order.ProposalID,
			order.OrderNumber,
			order.Description,
			order.Value,
			order.ServiceDescription,
		).Scan(&orderID).Error
		if err != nil {
			return err
		}
		return insertItems(tx, orderID, order.Items)
	})
}

func (r *ProposalRepository) UpdateOrderScalars(ctx context.Context, proposalID uuid.UUID, order model.Order) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		UPDATE orders
		SET
			description = ?,
			value = ?,
			service_description = ?,
			updated_at = NOW()
		WHERE proposal_id = ? AND order_number = ?
		RETURNING id
	`,
		order.Description,
		order.Value,
		order.ServiceDescription,
		proposalID,
		order.OrderNumber,
	).Scan(&orderID).Error
	if err != nil {
		return uuid.Nil, err
	}
	if orderID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return orderID, nil
}

// ReplaceOrderItems swaps the full item set of an order in one
// transaction. Items carry no natural key, so a wholesale replace is the
// policy instead of per-item diffing.
func (r *ProposalRepository) ReplaceOrderItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM order_items WHERE order_id = ?`, orderID).Error; err != nil {
			return err
		}
		return insertItems(tx, orderID, items)
	})
}

func insertItems(tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error {
	for _, item := range items {
		err := tx.Exec(`
			INSERT INTO order_items (order_id, name, quantity, value)
			VALUES (?, ?, ?, ?)
		`, orderID, item.Name, item.Quantity, item.Value).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ProposalRepository) ListProposals(ctx context.Context) ([]model.ProposalRow, error) {
	var rows []struct {
		ID           uuid.UUID
		CustomerName string
		ProposalDate time.Time
		TotalValue   float64
		ProjectType  string
		DocRevision  string
		DocLink      *string
		FirstName    *string
		LastName     *string
		Email        *string
		CreatedAt    time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.customer_name,
			p.proposal_date,
			p.total_value,
			p.project_type,
			p.doc_revision,
			p.doc_link,
			u.first_name,
			u.last_name,
			u.email,
			p.created_at
		FROM proposals p
		LEFT JOIN users u ON u.id = p.created_by
		ORDER BY p.created_at DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]model.ProposalRow, 0, len(rows))
	for _, row := range rows {
		creator := model.User{}
		if row.FirstName != nil {
			creator.FirstName = *row.FirstName
		}
		if row.LastName != nil {
			creator.LastName = *row.LastName
		}
		if row.Email != nil {
			creator.Email = *row.Email
		}
		result = append(result, model.ProposalRow{
			ID:            row.ID,
			CustomerName:  row.CustomerName,
			ProposalDate:  row.ProposalDate,
			TotalValue:    row.TotalValue,
			ProjectType:   row.ProjectType,
			DocRevision:   row.DocRevision,
			DocLink:       row.DocLink,
			CreatedByName: creator.DisplayName(),
			CreatedAt:     row.CreatedAt,
		})
	}
	return result, nil
}

// GetProposal loads the full proposal tree: the row, its orders in
// insertion order, and every order's items.
func (r *ProposalRepository) GetProposal(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_name,
			proposal_date,
			total_value,
			payment_condition,
			project_type,
			doc_revision,
			execution_time,
			tag,
			city,
			doc_link,
			created_by,
			created_at,
			updated_at
		FROM proposals
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&proposal).Error
	if err != nil {
		return nil, err
	}
	if proposal.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var orders []model.Order
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			proposal_id,
			order_number,
			description,
			value,
			service_description,
			created_at,
			updated_at
		FROM orders
		WHERE proposal_id = ?
		ORDER BY created_at ASC
	`, id).Scan(&orders).Error
	if err != nil {
		return nil, err
	}

	for i := range orders {
		var items []model.OrderItem
		err = r.db.WithContext(ctx).Raw(`
			SELECT id, order_id, name, quantity, value, created_at
			FROM order_items
			WHERE order_id = ?
			ORDER BY created_at ASC
		`, orders[i].ID).Scan(&items).Error
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	proposal.Orders = orders
	return &proposal, nil
}
