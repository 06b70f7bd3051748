package omie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatize/proposals-service/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OmieConfig{
		BaseURL:   server.URL,
		AppKey:    "key",
		AppSecret: "secret",
	})
}

func TestGetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/produtos/pedido/", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ConsultarPedido", req["call"])
		assert.Equal(t, "key", req["app_key"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"pedido_venda_produto": map[string]interface{}{
				"cabecalho":    map[string]interface{}{"numero_pedido": "1001"},
				"total_pedido": map[string]interface{}{"valor_total_pedido": 500.0},
				"det": []map[string]interface{}{
					{"produto": map[string]interface{}{
						"descricao":   "Sensor",
						"quantidade":  2.0,
						"valor_total": 500.0,
					}},
				},
			},
		})
	})

	order, err := client.GetOrder(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", order.OrderNumber)
	assert.Equal(t, 500.0, order.TotalValue)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Sensor", order.Items[0].Name)
	assert.Equal(t, "2", order.Items[0].Quantity)
}

func TestGetOrderNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"faultstring": "Pedido não cadastrado",
		})
	})

	_, err := client.GetOrder(context.Background(), "9999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetOrder(context.Background(), "1001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderRequiresNumber(t *testing.T) {
	client := NewClient(config.OmieConfig{BaseURL: "http://localhost"})
	_, err := client.GetOrder(context.Background(), "  ")
	require.Error(t, err)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", formatQuantity(2))
	assert.Equal(t, "2.5", formatQuantity(2.5))
}
