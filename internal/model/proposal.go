package model

import (
	"time"

	"github.com/google/uuid"
)

type Proposal struct {
	ID               uuid.UUID
	CustomerName     string
	ProposalDate     time.Time
	TotalValue       float64
	PaymentCondition string
	ProjectType      string
	DocRevision      string
	ExecutionTime    string
	Tag              *string
	City             *string
	DocLink          *string
	CreatedBy        *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Orders           []Order `gorm:"-"`
}

type Order struct {
	ID                 uuid.UUID
	ProposalID         uuid.UUID
	OrderNumber        string
	Description        string
	Value              float64
	ServiceDescription string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []OrderItem `gorm:"-"`
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Name      string
	Quantity  string // opaque token, may carry units ("2", "150m")
	Value     float64
	CreatedAt time.Time
}

// ProposalRow is the list-view projection with the creator display name
// and the total already formatted for presentation.
type ProposalRow struct {
	ID             uuid.UUID
	CustomerName   string
	ProposalDate   time.Time
	TotalValue     float64
	TotalFormatted string
	ProjectType    string
	DocRevision    string
	DocLink        *string
	CreatedByName  string
	CreatedAt      time.Time
}

// ProposalDocument is the renderer input: the validated proposal plus
// presentation flags.
type ProposalDocument struct {
	ProposalID     *uuid.UUID
	Proposal       Proposal
	ShowItemValues bool
}
