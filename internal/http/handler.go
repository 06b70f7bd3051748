package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/automatize/proposals-service/internal/excel"
	"github.com/automatize/proposals-service/internal/http/middleware"
	"github.com/automatize/proposals-service/internal/omie"
	"github.com/automatize/proposals-service/internal/service"
)

type Handler struct {
	proposals *service.ProposalService
	export    *excel.Generator
	omie      *omie.Client
	log       zerolog.Logger
}

func NewHandler(proposals *service.ProposalService, export *excel.Generator, omieClient *omie.Client, log zerolog.Logger) *Handler {
	return &Handler{
		proposals: proposals,
		export:    export,
		omie:      omieClient,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/proposals", h.createProposal)
	protected.PUT("/proposals/:id", h.editProposal)
	protected.DELETE("/proposals/:id", h.deleteProposal)
	protected.GET("/proposals", h.listProposals)
	protected.GET("/proposals/export", h.exportProposals)
	protected.GET("/proposals/:id", h.getProposal)
	protected.POST("/omie/order", h.lookupOrder)
}

type orderItemRequest struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
}

type orderRequest struct {
	OrderNumber        string             `json:"order_number"`
	Description        string             `json:"description"`
	Value              float64            `json:"value"`
	ServiceDescription string             `json:"service_description"`
	Items              []orderItemRequest `json:"items"`
}

type proposalRequest struct {
	CustomerName     string         `json:"customer_name"`
	ProposalDate     string         `json:"proposal_date"`
	PaymentCondition string         `json:"payment_condition"`
	ExecutionTime    string         `json:"execution_time"`
	ProjectType      string         `json:"project_type"`
	DocRevision      string         `json:"doc_revision"`
	Tag              string         `json:"tag"`
	City             string         `json:"city"`
	TotalValue       float64        `json:"proposal_total_value"`
	ShowItemValues   bool           `json:"show_item_values"`
	Orders           []orderRequest `json:"orders"`
}

func (r proposalRequest) toInput() (service.ProposalInput, error) {
	date, err := parseDate(r.ProposalDate)
	if err != nil {
		return service.ProposalInput{}, err
	}

	orders := make([]service.OrderInput, 0, len(r.Orders))
	for _, order := range r.Orders {
		items := make([]service.OrderItemInput, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, service.OrderItemInput{
				Name:     item.Name,
				Quantity: item.Quantity,
				Value:    item.Value,
			})
		}
		orders = append(orders, service.OrderInput{
			OrderNumber:        order.OrderNumber,
			Description:        order.Description,
			Value:              order.Value,
			ServiceDescription: order.ServiceDescription,
			Items:              items,
		})
	}

	return service.ProposalInput{
		CustomerName:     r.CustomerName,
		ProposalDate:     date,
		PaymentCondition: r.PaymentCondition,
		ExecutionTime:    r.ExecutionTime,
		ProjectType:      r.ProjectType,
		DocRevision:      r.DocRevision,
		Tag:              r.Tag,
		City:             r.City,
		TotalValue:       r.TotalValue,
		ShowItemValues:   r.ShowItemValues,
		Orders:           orders,
	}, nil
}

func (h *Handler) createProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal_date"})
		return
	}

	result, err := h.proposals.Create(c.Request.Context(), service.CreateProposalInput{
		Proposal:  input,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"result":      "created",
		"proposal_id": result.ProposalID,
		"doc_link":    result.DocLink,
		"message":     result.Message,
	})
}

func (h *Handler) editProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	proposalID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal_date"})
		return
	}

	result, err := h.proposals.Edit(c.Request.Context(), service.EditProposalInput{
		ProposalID: proposalID,
		Proposal:   input,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      "updated",
		"proposal_id": result.ProposalID,
		"doc_link":    result.DocLink,
		"message":     result.Message,
		"warnings":    result.Warnings,
	})
}

func (h *Handler) deleteProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	proposalID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	result, err := h.proposals.Delete(c.Request.Context(), service.DeleteProposalInput{
		ProposalID: proposalID,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":   "deleted",
		"message":  result.Message,
		"warnings": result.Warnings,
	})
}

func (h *Handler) listProposals(c *gin.Context) {
	rows, err := h.proposals.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": rows})
}

func (h *Handler) getProposal(c *gin.Context) {
	proposalID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.proposals.Get(c.Request.Context(), proposalID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

func (h *Handler) exportProposals(c *gin.Context) {
	rows, err := h.proposals.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.export.Generate(rows)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := excel.BuildFileName(time.Now())
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

type orderLookupRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
}

func (h *Handler) lookupOrder(c *gin.Context) {
	var req orderLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.omie.GetOrder(c.Request.Context(), req.OrderNumber)
	if err != nil {
		if errors.Is(err, omie.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pedido não encontrado"})
			return
		}
		h.log.Error().Err(err).Msg("omie lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "falha ao consultar pedido"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "dados inválidos",
			"violations": verr.Violations,
		})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrDomainRule):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRender), errors.Is(err, service.ErrStorage), errors.Is(err, service.ErrPersistence):
		h.log.Error().Err(err).Msg("proposal workflow failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
