package polymarket

import (
	"context"
	"fmt"
)

const clobOrderPath = "/order"

// OrderRequest es el payload de una orden al CLOB.
type OrderRequest struct {
	TokenID string  `json:"token_id"`
	Price   float64 `json:"price"`
	Size    float64 `json:"size"`
	Side    string  `json:"side"`
}

// OrderResponse es la respuesta del CLOB a una orden.
type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderID,omitempty"`
	Error   string `json:"errorMsg,omitempty"`
}

// PostOrder envía una orden al CLOB y devuelve la respuesta.
// Sin credenciales configuradas el CLOB responde 401: el error se propaga
// al caller, nunca tumba el proceso.
func (c *Client) PostOrder(ctx context.Context, order OrderRequest) (OrderResponse, error) {
	var resp OrderResponse
	url := c.clobBase + clobOrderPath
	if err := c.post(ctx, c.clobLimiter, url, order, &resp); err != nil {
		return OrderResponse{}, fmt.Errorf("polymarket.PostOrder: %w", err)
	}
	return resp, nil
}
