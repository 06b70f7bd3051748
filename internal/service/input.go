package service

import (
	"time"

	"github.com/automatize/proposals-service/internal/model"
)

type OrderItemInput struct {
	Name     string  `json:"name" validate:"required"`
	Quantity string  `json:"quantity" validate:"required"`
	Value    float64 `json:"value" validate:"gte=0"`
}

type OrderInput struct {
	OrderNumber        string           `json:"order_number" validate:"required"`
	Description        string           `json:"description" validate:"required"`
	Value              float64          `json:"value" validate:"gt=0"`
	ServiceDescription string           `json:"service_description" validate:"required"`
	Items              []OrderItemInput `json:"items" validate:"min=1,dive"`
}

// ProposalInput mirrors the submitted form. The client total is a
// convenience field only; the stored total is recomputed from the orders.
type ProposalInput struct {
	CustomerName     string       `json:"customer_name" validate:"required,min=2,max=50"`
	ProposalDate     time.Time    `json:"proposal_date" validate:"required"`
	PaymentCondition string       `json:"payment_condition" validate:"required"`
	ExecutionTime    string       `json:"execution_time" validate:"required"`
	ProjectType      string       `json:"project_type" validate:"required"`
	DocRevision      string       `json:"doc_revision" validate:"required,min=2"`
	Tag              string       `json:"tag" validate:"omitempty,max=20"`
	City             string       `json:"city" validate:"omitempty,max=60"`
	TotalValue       float64      `json:"proposal_total_value"`
	ShowItemValues   bool         `json:"show_item_values"`
	Orders           []OrderInput `json:"orders" validate:"min=1,dive"`
}

func (in ProposalInput) ordersTotal() float64 {
	total := 0.0
	for _, order := range in.Orders {
		total += order.Value
	}
	return total
}

func (in ProposalInput) toModel() model.Proposal {
	orders := make([]model.Order, 0, len(in.Orders))
	for _, order := range in.Orders {
		items := make([]model.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, model.OrderItem{
				Name:     item.Name,
				Quantity: item.Quantity,
				Value:    item.Value,
			})
		}
		orders = append(orders, model.Order{
			OrderNumber:        order.OrderNumber,
			Description:        order.Description,
			Value:              order.Value,
			ServiceDescription: order.ServiceDescription,
			Items:              items,
		})
	}

	proposal := model.Proposal{
		CustomerName:     in.CustomerName,
		ProposalDate:     in.ProposalDate,
		TotalValue:       in.ordersTotal(),
		PaymentCondition: in.PaymentCondition,
		ProjectType:      in.ProjectType,
		DocRevision:      in.DocRevision,
		ExecutionTime:    in.ExecutionTime,
		Orders:           orders,
	}
	if in.Tag != "" {
		tag := in.Tag
		proposal.Tag = &tag
	}
	if in.City != "" {
		city := in.City
		proposal.City = &city
	}
	return proposal
}
