// Package omie wraps the OMIE order-lookup API. The UI uses it to
// prefill an order before submitting a proposal; the lifecycle
// orchestrator never calls it.
package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/automatize/proposals-service/internal/config"
)

var ErrOrderNotFound = errors.New("order not found")

type Client struct {
	httpClient *http.Client
	baseURL    string
	appKey     string
	appSecret  string
}

func NewClient(cfg config.OmieConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
	}
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
}

type Order struct {
	OrderNumber string      `json:"order_number"`
	TotalValue  float64     `json:"total_value"`
	Items       []OrderItem `json:"items"`
}

type apiRequest struct {
	Call      string        `json:"call"`
	AppKey    string        `json:"app_key"`
	AppSecret string        `json:"app_secret"`
	Param     []interface{} `json:"param"`
}

type apiOrderResponse struct {
	PedidoVendaProduto struct {
		Cabecalho struct {
			NumeroPedido string `json:"numero_pedido"`
		} `json:"cabecalho"`
		TotalPedido struct {
			ValorTotalPedido float64 `json:"valor_total_pedido"`
		} `json:"total_pedido"`
		Det []struct {
			Produto struct {
				Descricao  string  `json:"descricao"`
				Quantidade float64 `json:"quantidade"`
				ValorTotal float64 `json:"valor_total"`
			} `json:"produto"`
		} `json:"det"`
	} `json:"pedido_venda_produto"`
	FaultString string `json:"faultstring"`
}

// GetOrder looks an order up by its number (ConsultarPedido).
func (c *Client) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, fmt.Errorf("order number is required")
	}

	payload := apiRequest{
		Call:      "ConsultarPedido",
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
		Param: []interface{}{
			map[string]string{"numero_pedido": orderNumber},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/produtos/pedido/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omie request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omie returned status %d", resp.StatusCode)
	}

	var parsed apiOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode omie response: %w", err)
	}
	if parsed.FaultString != "" {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, parsed.FaultString)
	}
	if parsed.PedidoVendaProduto.Cabecalho.NumeroPedido == "" {
		return nil, ErrOrderNotFound
	}

	items := make([]OrderItem, 0, len(parsed.PedidoVendaProduto.Det))
	for _, det := range parsed.PedidoVendaProduto.Det {
		items = append(items, OrderItem{
			Name:     det.Produto.Descricao,
			Quantity: formatQuantity(det.Produto.Quantidade),
			Value:    det.Produto.ValorTotal,
		})
	}

	return &Order{
		OrderNumber: parsed.PedidoVendaProduto.Cabecalho.NumeroPedido,
		TotalValue:  parsed.PedidoVendaProduto.TotalPedido.ValorTotalPedido,
		Items:       items,
	}, nil
}

func formatQuantity(quantity float64) string {
	if quantity == float64(int64(quantity)) {
		return fmt.Sprintf("%d", int64(quantity))
	}
	return fmt.Sprintf("%g", quantity)
}
