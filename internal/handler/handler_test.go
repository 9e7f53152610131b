package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sprockets/internal/config"
	"sprockets/internal/dto"
	"sprockets/internal/handler"
	"sprockets/internal/middleware"
	"sprockets/internal/repository/repotest"
	"sprockets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

type errBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func inventoryEngine() *gin.Engine {
	parts, products := repotest.NewParts(), repotest.NewProducts()
	tx := &repotest.Tx{Parts: parts, Products: products}
	partsH := handler.NewPartsHandler(service.NewPartService(parts, products, tx, nil, 0))
	productsH := handler.NewProductsHandler(service.NewProductService(products, parts, tx))

	r := newEngine()
	r.POST("/parts", partsH.Add)
	r.GET("/parts", partsH.List)
	r.GET("/parts/id/:id", partsH.GetByID)
	r.GET("/parts/name/:name", partsH.SearchByName)
	r.PUT("/parts/:id", partsH.Update)
	r.DELETE("/parts/:id", partsH.Delete)
	r.POST("/products", productsH.Add)
	r.GET("/products/id/:id", productsH.GetByID)
	r.DELETE("/products/:id", productsH.Delete)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var gear = map[string]any{
	"name": "Gear", "price": 12.5, "stock": 5, "min": 1, "max": 10,
	"type": "InHouse", "machineId": "MCH-001",
}

// ── Parts ─────────────────────────────────────────────────────────────────────

func TestParts_AddReturnsCreated(t *testing.T) {
	r := inventoryEngine()
	w := do(t, r, http.MethodPost, "/parts", gear)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Gear", body["name"])
	assert.Equal(t, 12.5, body["price"])
	assert.Equal(t, "MCH-001", body["machineId"])
	assert.Nil(t, body["companyName"])
	assert.Contains(t, body, "createdAt")
}

func TestParts_AddValidationError(t *testing.T) {
	r := inventoryEngine()
	w := do(t, r, http.MethodPost, "/parts", map[string]any{"price": -1, "stock": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[errBody](t, w)
	assert.Contains(t, body.Message, "Part validation failed")
	fields := map[string]bool{}
	for _, e := range body.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["type"])
}

func TestParts_MalformedJSON(t *testing.T) {
	r := inventoryEngine()
	w := do(t, r, http.MethodPost, "/parts", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errBody](t, w).Message, "Invalid JSON")
}

func TestParts_GetErrors(t *testing.T) {
	r := inventoryEngine()

	w := do(t, r, http.MethodGet, "/parts/id/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decode[errBody](t, w).Message)

	w = do(t, r, http.MethodGet, "/parts/id/0000000000000000000000ff", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Part not found", decode[errBody](t, w).Message)
}

func TestParts_SearchEmptyIsNotFound(t *testing.T) {
	r := inventoryEngine()
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/parts", gear).Code)

	w := do(t, r, http.MethodGet, "/parts/name/sprocket", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No parts found", decode[errBody](t, w).Message)

	w = do(t, r, http.MethodGet, "/parts/name/GE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.PartResponse](t, w), 1)

	w = do(t, r, http.MethodGet, "/parts?name=ear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.PartResponse](t, w), 1)
}

func TestParts_ListEmptyIsOK(t *testing.T) {
	r := inventoryEngine()
	w := do(t, r, http.MethodGet, "/parts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestParts_UpdateAndDelete(t *testing.T) {
	r := inventoryEngine()
	created := decode[dto.PartResponse](t, do(t, r, http.MethodPost, "/parts", gear))

	outsourced := map[string]any{
		"name": "Gear", "price": 10, "stock": 4, "min": 1, "max": 10,
		"type": "Outsourced", "companyName": "Acme", "machineId": "MCH-001",
	}
	w := do(t, r, http.MethodPut, "/parts/"+created.ID, outsourced)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.PartResponse](t, w)
	assert.Equal(t, "Outsourced", updated.Type)
	assert.Nil(t, updated.MachineID)

	w = do(t, r, http.MethodDelete, "/parts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Part removed", decode[dto.MessageResponse](t, w).Message)

	w = do(t, r, http.MethodDelete, "/parts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Products ──────────────────────────────────────────────────────────────────

func TestProducts_DeleteWithPartsIsRejected(t *testing.T) {
	r := inventoryEngine()
	part := decode[dto.PartResponse](t, do(t, r, http.MethodPost, "/parts", gear))

	w := do(t, r, http.MethodPost, "/products", map[string]any{
		"name": "Gearbox", "price": 99.99, "stock": 3, "min": 1, "max": 5,
		"associatedParts": []map[string]any{{"partId": part.ID, "name": part.Name}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[dto.ProductResponse](t, w)
	require.Len(t, product.AssociatedParts, 1)
	require.NotNil(t, product.AssociatedParts[0].Part)

	w = do(t, r, http.MethodDelete, "/products/"+product.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete a product with associated parts", decode[errBody](t, w).Message)

	// Deleting the part empties the product, which can then go.
	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/parts/"+part.ID, nil).Code)
	w = do(t, r, http.MethodGet, "/products/id/"+product.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.ProductResponse](t, w).AssociatedParts)

	w = do(t, r, http.MethodDelete, "/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product removed", decode[dto.MessageResponse](t, w).Message)
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func authEngine() *gin.Engine {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	h := handler.NewAuthHandler(service.NewAuthService(repotest.NewUsers(), cfg))
	r := newEngine()
	r.POST("/users", h.Register)
	r.POST("/users/login", h.Login)
	r.GET("/users/me", middleware.JWTAuth(cfg.JWTSecret), h.Me)
	return r
}

func TestAuth_RegisterMissingFields(t *testing.T) {
	r := authEngine()
	w := do(t, r, http.MethodPost, "/users", map[string]any{"email": "ada@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[errBody](t, w)
	assert.Equal(t, "Please include all fields", body.Message)
	fields := []string{}
	for _, e := range body.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"firstName", "lastName", "password"}, fields)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	r := authEngine()
	user := map[string]any{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "password": "engine42"}

	w := do(t, r, http.MethodPost, "/users", user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[dto.AuthResponse](t, w)
	assert.NotEmpty(t, reg.Token)

	w = do(t, r, http.MethodPost, "/users", user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decode[errBody](t, w).Message)

	w = do(t, r, http.MethodPost, "/users/login", map[string]any{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[errBody](t, w).Message)

	w = do(t, r, http.MethodPost, "/users/login", map[string]any{"email": "ada@example.com", "password": "engine42"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[dto.AuthResponse](t, w).Token

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", decode[dto.UserResponse](t, rec).Email)
}

// ── Reports ───────────────────────────────────────────────────────────────────

type failingReports struct{ service.ReportService }

func (failingReports) PartsByType(context.Context) (*dto.PartsByTypeReport, error) {
	return nil, errors.New("connection refused")
}

func reportsEngine(svc service.ReportService) *gin.Engine {
	h := handler.NewReportsHandler(svc, 0)
	r := newEngine()
	r.GET("/reports/low-stock", h.LowStock)
	r.GET("/reports/parts-by-type", h.PartsByType)
	return r
}

func TestReports_LowStockJSONAndPDF(t *testing.T) {
	parts, products, users := repotest.NewParts(), repotest.NewProducts(), repotest.NewUsers()
	r := reportsEngine(service.NewReportService(parts, products, users))

	w := do(t, r, http.MethodGet, "/reports/low-stock?threshold=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[dto.LowStockReport](t, w)
	assert.Equal(t, "Low Stock Report", report.Title)
	assert.Equal(t, 3, report.Threshold)

	w = do(t, r, http.MethodGet, "/reports/low-stock?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="low-stock.pdf"`)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestReports_BadThreshold(t *testing.T) {
	r := reportsEngine(failingReports{})
	w := do(t, r, http.MethodGet, "/reports/low-stock?threshold=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReports_StoreFailureIsInternalError(t *testing.T) {
	r := reportsEngine(failingReports{})
	w := do(t, r, http.MethodGet, "/reports/parts-by-type", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode[errBody](t, w).Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	r := newEngine()
	r.GET("/ok", handler.Health(handler.Check{Name: "database", Ping: func(context.Context) error { return nil }}))
	r.GET("/down", handler.Health(
		handler.Check{Name: "database", Ping: func(context.Context) error { return nil }},
		handler.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp") }},
	))

	w := do(t, r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"database":"connected"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"ok":false,"database":"connected","redis":"error"}`, w.Body.String())
}
