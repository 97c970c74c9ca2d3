package erp

import (
	"context"
	"net/http"
)

// DashboardSummary is the read-only dashboard payload.
type DashboardSummary struct {
	TotalBancos      int    `json:"total_bancos"`
	TotalProveedores int    `json:"total_proveedores"`
	TotalEmpresas    int    `json:"total_empresas"`
	MovimientosMes   int    `json:"movimientos_mes"`
	SaldoTotal       string `json:"saldo_total"`
}

// Dashboard fetches the dashboard summary.
func (c *Client) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, nil, summary); err != nil {
		return nil, err
	}
	return summary, nil
}
