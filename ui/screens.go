package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/erpinterno/erpadmin/erp"
)

const screenPageSize = 20

// renderRoute fetches and renders the body of a data screen. The screens are
// deliberately plain list views: all the interesting behaviour lives in the
// session, transport, and guard layers underneath them.
func renderRoute(ctx context.Context, client *erp.Client, path string) (string, error) {
	params := erp.ListParams{Limit: screenPageSize}

	switch path {
	case "/dashboard":
		summary, err := client.Dashboard(ctx)
		if err != nil {
			return "", err
		}
		return renderDashboard(summary), nil
	case "/bancos":
		page, err := client.Bancos().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(b erp.Banco) string {
			return fmt.Sprintf("%-4d %-30s %s", b.ID, b.Nombre, activeLabel(b.Activo))
		}), nil
	case "/categorias":
		page, err := client.Categorias().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(c erp.Categoria) string {
			return fmt.Sprintf("%-4d %-30s %s", c.ID, c.Nombre, c.Tipo)
		}), nil
	case "/proveedores":
		page, err := client.Proveedores().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(p erp.Proveedor) string {
			return fmt.Sprintf("%-4d %-30s %s", p.ID, p.Nombre, p.CIF)
		}), nil
	case "/empresas":
		page, err := client.Empresas().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(e erp.Empresa) string {
			return fmt.Sprintf("%-4d %-30s %s", e.ID, e.Nombre, e.CIF)
		}), nil
	case "/formas-pago":
		page, err := client.FormasPago().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(f erp.FormaPago) string {
			return fmt.Sprintf("%-4d %-30s %s", f.ID, f.Nombre, activeLabel(f.Activo))
		}), nil
	case "/integraciones":
		page, err := client.Integraciones().List(ctx, params)
		if err != nil {
			return "", err
		}
		return renderList(page.Total, page.Items, func(i erp.Integracion) string {
			return fmt.Sprintf("%-4d %-30s %-10s %s", i.ID, i.Nombre, i.Tipo, i.Estado)
		}), nil
	}
	return "", fmt.Errorf("sin pantalla para %s", path)
}

func renderDashboard(s *erp.DashboardSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bancos:           %d\n", s.TotalBancos)
	fmt.Fprintf(&b, "Proveedores:      %d\n", s.TotalProveedores)
	fmt.Fprintf(&b, "Empresas:         %d\n", s.TotalEmpresas)
	fmt.Fprintf(&b, "Movimientos/mes:  %d\n", s.MovimientosMes)
	fmt.Fprintf(&b, "Saldo total:      %s\n", s.SaldoTotal)
	return b.String()
}

func renderList[T any](total int, items []T, line func(T) string) string {
	if len(items) == 0 {
		return "(sin resultados)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString(line(item))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d de %d", len(items), total)
	return b.String()
}

func activeLabel(active bool) string {
	if active {
		return "activo"
	}
	return "inactivo"
}
