package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	SwaggerInfo.Host = "shop.example:9000"
	t.Cleanup(func() { SwaggerInfo.Host = "localhost:8080" })

	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Host                string                     `json:"host"`
		Schemes             []string                   `json:"schemes"`
		Paths               map[string]json.RawMessage `json:"paths"`
		Definitions         map[string]json.RawMessage `json:"definitions"`
		SecurityDefinitions map[string]json.RawMessage `json:"securityDefinitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "shop.example:9000", doc.Host)
	assert.Equal(t, []string{"http"}, doc.Schemes)
	assert.Contains(t, doc.SecurityDefinitions, "BearerAuth")

	tests := []struct {
		path       string
		definition string
	}{
		{"/auth/login", "handler.LoginRequest"},
		{"/orders/{id}", "handler.UpdateOrderRequest"},
		{"/admin/users/{id}/password", "handler.AdminResetPasswordRequest"},
		{"/parts/low-stock", "ledger.LowStockPart"},
		{"/invoices", "model.Invoice"},
	}
	for _, tt := range tests {
		assert.Contains(t, doc.Paths, tt.path)
		assert.Contains(t, doc.Definitions, tt.definition)
	}
}
