package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/automatize/proposals-service/internal/excel"
	"github.com/automatize/proposals-service/internal/http/middleware"
	"github.com/automatize/proposals-service/internal/model"
	"github.com/automatize/proposals-service/internal/service"
)

type memoryRepo struct {
	proposals map[uuid.UUID]*model.Proposal
	orders    map[uuid.UUID][]model.Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		proposals: make(map[uuid.UUID]*model.Proposal),
		orders:    make(map[uuid.UUID][]model.Order),
	}
}

func (r *memoryRepo) InsertProposal(_ context.Context, proposal model.Proposal) (*model.Proposal, error) {
	proposal.ID = uuid.New()
	proposal.Orders = nil
	r.proposals[proposal.ID] = &proposal
	return &proposal, nil
}

func (r *memoryRepo) UpdateProposal(_ context.Context, proposal model.Proposal) error {
	if _, ok := r.proposals[proposal.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	proposal.Orders = nil
	r.proposals[proposal.ID] = &proposal
	return nil
}

func (r *memoryRepo) DeleteProposal(_ context.Context, id uuid.UUID) error {
	delete(r.proposals, id)
	delete(r.orders, id)
	return nil
}

func (r *memoryRepo) GetProposalMeta(_ context.Context, id uuid.UUID) (*service.ProposalMeta, error) {
	proposal, ok := r.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &service.ProposalMeta{ID: id, CreatedBy: proposal.CreatedBy, DocLink: proposal.DocLink}, nil
}

func (r *memoryRepo) GetProposal(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	proposal, ok := r.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *proposal
	copied.Orders = r.orders[id]
	return &copied, nil
}

func (r *memoryRepo) ListProposals(_ context.Context) ([]model.ProposalRow, error) {
	rows := make([]model.ProposalRow, 0, len(r.proposals))
	for _, proposal := range r.proposals {
		rows = append(rows, model.ProposalRow{
			ID:           proposal.ID,
			CustomerName: proposal.CustomerName,
			TotalValue:   proposal.TotalValue,
		})
	}
	return rows, nil
}

func (r *memoryRepo) ListOrderNumbers(_ context.Context, proposalID uuid.UUID) ([]string, error) {
	var numbers []string
	for _, order := range r.orders[proposalID] {
		numbers = append(numbers, order.OrderNumber)
	}
	return numbers, nil
}

func (r *memoryRepo) DeleteOrdersByNumbers(_ context.Context, proposalID uuid.UUID, numbers []string) error {
	drop := make(map[string]bool, len(numbers))
	for _, number := range numbers {
		drop[number] = true
	}
	var kept []model.Order
	for _, order := range r.orders[proposalID] {
		if !drop[order.OrderNumber] {
			kept = append(kept, order)
		}
	}
	r.orders[proposalID] = kept
	return nil
}

func (r *memoryRepo) InsertOrderWithItems(_ context.Context, order model.Order) error {
	order.ID = uuid.New()
	r.orders[order.ProposalID] = append(r.orders[order.ProposalID], order)
	return nil
}

func (r *memoryRepo) UpdateOrderScalars(_ context.Context, proposalID uuid.UUID, order model.Order) (uuid.UUID, error) {
	for i, stored := range r.orders[proposalID] {
		if stored.OrderNumber == order.OrderNumber {
			r.orders[proposalID][i].Description = order.Description
			r.orders[proposalID][i].Value = order.Value
			r.orders[proposalID][i].ServiceDescription = order.ServiceDescription
			return stored.ID, nil
		}
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (r *memoryRepo) ReplaceOrderItems(_ context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	for proposalID, orders := range r.orders {
		for i, stored := range orders {
			if stored.ID == orderID {
				r.orders[proposalID][i].Items = items
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

type stubRenderer struct{}

func (stubRenderer) Render(model.ProposalDocument) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

type stubBlobStore struct{}

func (stubBlobStore) Upload(_ context.Context, path string, _ []byte, _ string, _ bool) (string, error) {
	return "https://files.example.com/" + path, nil
}

func (stubBlobStore) Delete(context.Context, string) error { return nil }

func (stubBlobStore) PublicURL(path string) string {
	return "https://files.example.com/" + path
}

func newTestRouter(repo *memoryRepo, principal model.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewProposalService(repo, stubRenderer{}, stubBlobStore{}, nil, zerolog.Nop())
	handler := NewHandler(svc, excel.NewGenerator(), nil, zerolog.Nop())

	authStub := func(c *gin.Context) {
		if principal.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		middleware.SetPrincipal(c, principal)
		c.Next()
	}

	router := gin.New()
	handler.Register(router, authStub)
	return router
}

func proposalPayload() map[string]interface{} {
	return map[string]interface{}{
		"customer_name":     "Acme",
		"proposal_date":     "2024-03-10",
		"payment_condition": "Entrada + 02 (duas parcelas) iguais",
		"execution_time":    "60 dias",
		"project_type":      "Soluções de Tecnologia Residencial",
		"doc_revision":      "00",
		"orders": []map[string]interface{}{
			{
				"order_number":        "1001",
				"description":         "Automação",
				"value":               500.00,
				"service_description": "Instalação; Configuração",
				"items": []map[string]interface{}{
					{"name": "Sensor", "quantity": "2", "value": 250.00},
				},
			},
		},
	}
}

func doJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateProposalEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	userID := uuid.New()
	router := newTestRouter(repo, model.Principal{UserID: userID, Role: model.RoleUser})

	recorder := doJSON(router, http.MethodPost, "/proposals", proposalPayload())
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response struct {
		Result     string `json:"result"`
		ProposalID string `json:"proposal_id"`
		DocLink    string `json:"doc_link"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "created", response.Result)
	assert.Contains(t, response.DocLink, "pdfs/Proposta-Automatize-Acme-10032024-REV00.pdf")
	assert.Len(t, repo.proposals, 1)
}

func TestCreateProposalRequiresAuth(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), model.Principal{})

	recorder := doJSON(router, http.MethodPost, "/proposals", proposalPayload())
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateProposalValidationResponse(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), model.Principal{UserID: uuid.New(), Role: model.RoleUser})

	payload := proposalPayload()
	payload["customer_name"] = "A"

	recorder := doJSON(router, http.MethodPost, "/proposals", payload)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response struct {
		Violations []service.FieldViolation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.NotEmpty(t, response.Violations)
	assert.Equal(t, "customer_name", response.Violations[0].Field)
}

func TestCreateProposalRejectsBadDate(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), model.Principal{UserID: uuid.New(), Role: model.RoleUser})

	payload := proposalPayload()
	payload["proposal_date"] = "10/03/2024"

	recorder := doJSON(router, http.MethodPost, "/proposals", payload)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteProposalForbidden(t *testing.T) {
	repo := newMemoryRepo()
	creator := uuid.New()
	router := newTestRouter(repo, model.Principal{UserID: creator, Role: model.RoleUser})

	recorder := doJSON(router, http.MethodPost, "/proposals", proposalPayload())
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ProposalID string `json:"proposal_id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	other := newTestRouter(repo, model.Principal{UserID: uuid.New(), Role: model.RoleUser})
	recorder = doJSON(other, http.MethodDelete, fmt.Sprintf("/proposals/%s", created.ProposalID), nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Len(t, repo.proposals, 1)
}

func TestGetProposalNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), model.Principal{UserID: uuid.New(), Role: model.RoleUser})

	recorder := doJSON(router, http.MethodGet, "/proposals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestExportProposalsEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, model.Principal{UserID: uuid.New(), Role: model.RoleUser})

	recorder := doJSON(router, http.MethodPost, "/proposals", proposalPayload())
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(router, http.MethodGet, "/proposals/export", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, recorder.Body.Bytes())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), model.Principal{})

	recorder := doJSON(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
