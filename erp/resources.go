package erp

import (
	"context"
	"fmt"
	"net/http"
)

// Banco is a bank account record.
type Banco struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	Cuenta string `json:"cuenta,omitempty"`
	Saldo  string `json:"saldo,omitempty"`
	Activo bool   `json:"activo"`
}

// Categoria classifies movements as income or expense.
type Categoria struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo,omitempty"` // "ingreso" or "gasto"
	Activo bool   `json:"activo"`
}

// Proveedor is a supplier record.
type Proveedor struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	CIF    string `json:"cif,omitempty"`
	Email  string `json:"email,omitempty"`
	Activo bool   `json:"activo"`
}

// Empresa is a company record.
type Empresa struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	CIF    string `json:"cif,omitempty"`
	Activo bool   `json:"activo"`
}

// FormaPago is a payment method.
type FormaPago struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

// Integracion is an external integration configuration.
type Integracion struct {
	ID     int64  `json:"id,omitempty"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo,omitempty"`
	Estado string `json:"estado,omitempty"`
	Activo bool   `json:"activo"`
	Config string `json:"config,omitempty"`
}

// IntegracionLog is one execution log line of an integration.
type IntegracionLog struct {
	ID            int64  `json:"id,omitempty"`
	IntegracionID int64  `json:"integracion_id"`
	Nivel         string `json:"nivel,omitempty"`
	Mensaje       string `json:"mensaje"`
	CreadoEn      string `json:"creado_en,omitempty"`
}

// Bancos returns the bank accounts resource.
func (c *Client) Bancos() Resource[Banco] {
	return resource[Banco](c, "/bancos")
}

// Categorias returns the categories resource.
func (c *Client) Categorias() Resource[Categoria] {
	return resource[Categoria](c, "/categorias")
}

// Proveedores returns the suppliers resource.
func (c *Client) Proveedores() Resource[Proveedor] {
	return resource[Proveedor](c, "/proveedores")
}

// Empresas returns the companies resource.
func (c *Client) Empresas() Resource[Empresa] {
	return resource[Empresa](c, "/empresas")
}

// FormasPago returns the payment methods resource.
func (c *Client) FormasPago() Resource[FormaPago] {
	return resource[FormaPago](c, "/formas-pago")
}

// Integraciones returns the integrations resource.
func (c *Client) Integraciones() Resource[Integracion] {
	return resource[Integracion](c, "/integraciones")
}

// IntegracionLogs lists the execution logs of one integration.
func (c *Client) IntegracionLogs(ctx context.Context, integracionID int64, params ListParams) (Page[IntegracionLog], error) {
	var page Page[IntegracionLog]
	path := fmt.Sprintf("/integraciones/%d/logs", integracionID)
	err := c.do(ctx, http.MethodGet, path, params.query(), nil, &page)
	return page, err
}
