package erp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erpinterno/erpadmin/erp"
)

func newTestClient(t *testing.T, handler http.Handler) *erp.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := erp.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return client
}

func TestClient_ListEncodesParams(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bancos", r.URL.Path)
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(erp.Page[erp.Banco]{
			Items: []erp.Banco{{ID: 1, Nombre: "Banco Uno", Activo: true}},
			Total: 42,
		})
	}))

	page, err := client.Bancos().List(context.Background(), erp.ListParams{
		Search:   "uno",
		SortBy:   "nombre",
		SortDesc: true,
		Skip:     20,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Equal(t, 42, page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Banco Uno", page.Items[0].Nombre)

	require.Contains(t, gotQuery, "search=uno")
	require.Contains(t, gotQuery, "sort_by=nombre")
	require.Contains(t, gotQuery, "sort_order=desc")
	require.Contains(t, gotQuery, "skip=20")
	require.Contains(t, gotQuery, "limit=10")
}

func TestClient_CrudRoundTrip(t *testing.T) {
	store := map[int64]erp.Proveedor{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/proveedores":
			var p erp.Proveedor
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = 7
			store[p.ID] = p
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodGet && r.URL.Path == "/proveedores/7":
			json.NewEncoder(w).Encode(store[7])
		case r.Method == http.MethodPut && r.URL.Path == "/proveedores/7":
			var p erp.Proveedor
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = 7
			store[7] = p
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodDelete && r.URL.Path == "/proveedores/7":
			delete(store, 7)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	proveedores := client.Proveedores()
	ctx := context.Background()

	created, err := proveedores.Create(ctx, erp.Proveedor{Nombre: "ACME", CIF: "B12345678", Activo: true})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)

	got, err := proveedores.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "ACME", got.Nombre)

	got.Nombre = "ACME S.L."
	updated, err := proveedores.Update(ctx, 7, got)
	require.NoError(t, err)
	require.Equal(t, "ACME S.L.", updated.Nombre)

	require.NoError(t, proveedores.Delete(ctx, 7))

	_, err = proveedores.Get(ctx, 7)
	require.True(t, erp.IsNotFound(err))
}

func TestClient_APIErrorCarriesStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.Empresas().List(context.Background(), erp.ListParams{})
	require.Error(t, err)

	var apiErr *erp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestClient_Dashboard(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dashboard", r.URL.Path)
		json.NewEncoder(w).Encode(erp.DashboardSummary{
			TotalBancos:    3,
			MovimientosMes: 120,
			SaldoTotal:     "15300.50",
		})
	}))

	summary, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalBancos)
	require.Equal(t, "15300.50", summary.SaldoTotal)
}

func TestClient_IntegracionLogs(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/integraciones/3/logs", r.URL.Path)
		json.NewEncoder(w).Encode(erp.Page[erp.IntegracionLog]{
			Items: []erp.IntegracionLog{{ID: 1, IntegracionID: 3, Nivel: "error", Mensaje: "sync failed"}},
			Total: 1,
		})
	}))

	page, err := client.IntegracionLogs(context.Background(), 3, erp.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "sync failed", page.Items[0].Mensaje)
}
