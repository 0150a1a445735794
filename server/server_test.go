package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freshfetch/config"
	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    json.RawMessage         `json:"data"`
	Meta    *models.PaginationMeta  `json:"meta"`
	Links   *models.PaginationLinks `json:"links"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *repositories.Store
	svc    *Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		SessionCookie: "freshfetch_session",
		ReadOnlyEmail: []string{"demo@freshfetch.com"},
		AuthRateLimit: 1000,
	}
	config.AppConfig = cfg

	store := repositories.NewMemoryStore()
	svc := NewServices(store, Integrations{Cache: services.NewProductCache(nil)})
	return &testServer{t: t, router: NewRouter(cfg, svc), store: store, svc: svc}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var resp models.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &resp))
	return resp.Token
}

func (s *testServer) staff(email, role string) string {
	s.t.Helper()
	_, err := s.svc.Users.Create(context.Background(), models.CreateUserRequest{
		Name: "Staff", Email: email, Password: "secret123", Role: role,
	})
	require.NoError(s.t, err)
	return s.login(email, "secret123")
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthBannerAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FreshFetch")

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "freshfetch_http_requests_total")
}

func TestRegisterLoginAndSession(t *testing.T) {
	s := newTestServer(t)

	reg := models.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123"}
	w, env := s.do(http.MethodPost, "/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), "userId")

	w, env = s.do(http.MethodPost, "/auth/register", "", reg)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", env.Message)

	w, _ = s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "freshfetch_session=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")
	assert.NotContains(t, string(env.Data), "password")

	token := decode[models.LoginResponse](t, env.Data).Token
	w, env = s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleUser, decode[models.User](t, env.Data).Role)

	w, _ = s.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)

	w, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{
		Name: "Organic Apples", Category: "Fruits", Price: 3.5, Stock: 12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, env.Data)
	id := created.ID.Hex()

	w, env = s.do(http.MethodGet, "/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Product](t, env.Data)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Price, got.Price)
	assert.Equal(t, "organic-apples", got.Slug)

	w, env = s.do(http.MethodGet, "/products?category=Fruits&sortBy=price&order=asc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.ProductListData](t, env.Data)
	assert.EqualValues(t, 1, list.TotalProducts)

	w, _ = s.do(http.MethodGet, "/products/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, "/products/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, "/products/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductWritesNeedStaff(t *testing.T) {
	s := newTestServer(t)
	_, err := s.svc.Auth.Register(context.Background(), models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)
	user := s.login("bob@example.com", "secret123")

	w, _ := s.do(http.MethodPost, "/products", user, models.CreateProductRequest{Name: "Pears", Category: "Fruits"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/products", "", models.CreateProductRequest{Name: "Pears", Category: "Fruits"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	_, err := s.svc.Auth.Register(context.Background(), models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)
	user := s.login("bob@example.com", "secret123")

	_, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{Name: "Whole Milk", Category: "Dairy", Price: 10, Stock: 5})
	product := decode[models.Product](t, env.Data)

	order := models.CreateOrderRequest{
		Email:         "bob@example.com",
		Products:      []models.CartItem{{ProductID: product.ID.Hex(), Quantity: 2}},
		PaymentMethod: models.PaymentMethodCOD,
	}

	w, env := s.do(http.MethodPost, "/orders", user, order, "Idempotency-Key", "key-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[map[string]interface{}](t, env.Data)
	orderID := first["orderId"].(string)

	w, env = s.do(http.MethodPost, "/orders", user, order, "Idempotency-Key", "key-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orderID, decode[map[string]interface{}](t, env.Data)["orderId"])

	stored, err := s.store.Products.FindByID(context.Background(), product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)

	total := 1.0
	order.Total = &total
	w, _ = s.do(http.MethodPost, "/orders", user, order)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	order.Total = nil
	order.Products[0].Quantity = 50
	w, _ = s.do(http.MethodPost, "/orders", user, order)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, "/orders", user, models.CreateOrderRequest{Email: "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/orders?limit=1", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Links)
	assert.Equal(t, "/orders?limit=1&page=1", env.Links.Self)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	w, _ = s.do(http.MethodPatch, "/orders/"+orderID, admin, models.UpdateOrderRequest{OrderStatus: strPtr(models.OrderStatusDelivered)})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, "/orders/"+orderID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[models.Order](t, env.Data)
	time.Sleep(2 * time.Millisecond)

	w, env = s.do(http.MethodPatch, "/orders/"+orderID, admin, models.UpdateOrderRequest{OrderStatus: strPtr(models.OrderStatusShipped)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shipped := decode[models.Order](t, env.Data)
	assert.Equal(t, models.OrderStatusShipped, shipped.OrderStatus)
	assert.Equal(t, before.PaymentStatus, shipped.PaymentStatus)
	assert.Equal(t, before.PaymentMethod, shipped.PaymentMethod)
	assert.Equal(t, before.Total, shipped.Total)
	assert.Equal(t, before.Subtotal, shipped.Subtotal)
	assert.Equal(t, before.Products, shipped.Products)
	assert.Equal(t, before.ShippingAddress, shipped.ShippingAddress)
	assert.Equal(t, before.Email, shipped.Email)
	assert.True(t, before.CreatedAt.Equal(shipped.CreatedAt))
	assert.True(t, shipped.UpdatedAt.After(before.UpdatedAt))

	w, _ = s.do(http.MethodPatch, "/orders/"+orderID, user, models.UpdateOrderRequest{OrderStatus: strPtr(models.OrderStatusDelivered)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/orders/"+orderID+"/cancel", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodDelete, "/orders/"+orderID, user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodDelete, "/orders/"+orderID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/orders/"+orderID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIdempotencyKeyIsScopedToCaller(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	for _, email := range []string{"alice@x.com", "bob@x.com"} {
		_, err := s.svc.Auth.Register(context.Background(), models.RegisterRequest{Name: "Shopper", Email: email, Password: "secret123"})
		require.NoError(t, err)
	}
	alice := s.login("alice@x.com", "secret123")
	bob := s.login("bob@x.com", "secret123")

	_, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{Name: "Bananas", Category: "Fruits", Price: 2, Stock: 10})
	product := decode[models.Product](t, env.Data)

	order := func(email, name string) models.CreateOrderRequest {
		return models.CreateOrderRequest{
			Email:           email,
			Products:        []models.CartItem{{ProductID: product.ID.Hex(), Quantity: 1}},
			ShippingAddress: models.ShippingAddress{FullName: name, Address: "1 Private Rd"},
		}
	}

	w, env := s.do(http.MethodPost, "/orders", alice, order("alice@x.com", "Alice Secret"), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aliceID := decode[map[string]interface{}](t, env.Data)["orderId"]

	w, env = s.do(http.MethodPost, "/orders", bob, order("bob@x.com", "Bob"), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Alice Secret")
	assert.NotContains(t, w.Body.String(), "alice@x.com")
	assert.NotEqual(t, aliceID, decode[map[string]interface{}](t, env.Data)["orderId"])
}

func TestCheckoutPaymentNames(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	_, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{Name: "Bananas", Category: "Fruits", Price: 2, Stock: 10})
	product := decode[models.Product](t, env.Data)

	req := models.CreateOrderRequest{
		Email:         "admin@shop.com",
		Products:      []models.CartItem{{ProductID: product.ID.Hex(), Quantity: 1}},
		PaymentMethod: "Stripe",
		TransactionID: "pi_123",
	}
	w, env := s.do(http.MethodPost, "/orders", admin, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[struct {
		Order models.Order `json:"order"`
	}](t, env.Data)
	assert.Equal(t, models.PaymentMethodCard, placed.Order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPaid, placed.Order.PaymentStatus)

	req.PaymentMethod = "barter"
	w, env = s.do(http.MethodPost, "/orders", admin, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order data", env.Message)
}

func TestProductSortWithoutOrderIsAscending(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	for i, price := range []float64{1, 3, 2} {
		w, _ := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{
			Name: "Item " + string(rune('A'+i)), Category: "Pantry", Price: price, Stock: 1,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	prices := func(query string) []float64 {
		w, env := s.do(http.MethodGet, "/products"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		out := []float64{}
		for _, p := range decode[models.ProductListData](t, env.Data).Products {
			out = append(out, p.Price)
		}
		return out
	}

	assert.Equal(t, []float64{1, 2, 3}, prices("?sortBy=price"))
	assert.Equal(t, []float64{3, 2, 1}, prices("?sortBy=price&order=desc"))
	assert.Equal(t, []float64{2, 3, 1}, prices(""))
	assert.Empty(t, prices("?page=9223372036854775807"))
}

func TestCartQuote(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	_, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{Name: "Cheddar", Category: "Dairy", Price: 25, Stock: 5})
	product := decode[models.Product](t, env.Data)

	w, env := s.do(http.MethodPost, "/cart/quote", "", models.CartQuoteRequest{
		Items: []models.CartItem{{ProductID: product.ID.Hex(), Quantity: 2, Price: 0.01}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode[models.CartQuote](t, env.Data)
	assert.Equal(t, 50.0, quote.Subtotal)
	assert.Equal(t, 0.0, quote.Shipping)
	assert.Equal(t, 50.0, quote.Total)
}

func TestCartItemEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)
	_, env := s.do(http.MethodPost, "/products", admin, models.CreateProductRequest{Name: "Oats", Category: "Pantry", Price: 5, Stock: 5})
	oats := decode[models.Product](t, env.Data)
	key := oats.ID.Hex() + "-default"

	w, env := s.do(http.MethodPost, "/cart/items", "", models.AddCartItemRequest{
		Item: models.CartItem{ProductID: oats.ID.Hex(), Quantity: 2},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[models.CartQuote](t, env.Data)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, key, cart.Items[0].CartID)
	assert.Equal(t, 12.0, cart.Total)

	w, env = s.do(http.MethodPatch, "/cart/items/"+key, "", models.UpdateCartItemRequest{Items: cart.Items, Quantity: 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart = decode[models.CartQuote](t, env.Data)
	assert.Equal(t, 50.0, cart.Total)

	w, _ = s.do(http.MethodPatch, "/cart/items/unknown-default", "", models.UpdateCartItemRequest{Items: cart.Items, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodDelete, "/cart/items/"+key, "", models.CartQuoteRequest{Items: cart.Items})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart = decode[models.CartQuote](t, env.Data)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)
}

func TestUsersAdministration(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)

	req := models.CreateUserRequest{Name: "Mia", Email: "mia@shop.com", Password: "secret123", Role: models.RoleManager}
	w, env := s.do(http.MethodPost, "/users", admin, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mia := decode[models.User](t, env.Data)

	w, _ = s.do(http.MethodPost, "/users", admin, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	req.Email, req.Role = "x@shop.com", "owner"
	w, _ = s.do(http.MethodPost, "/users", admin, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/users?role=manager", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	manager := s.login("mia@shop.com", "secret123")
	w, _ = s.do(http.MethodDelete, "/users/"+mia.ID.Hex(), manager, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodDelete, "/users/"+mia.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/users/"+mia.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadOnlyDemoAccount(t *testing.T) {
	s := newTestServer(t)
	demo := s.staff("demo@freshfetch.com", models.RoleAdmin)

	w, _ := s.do(http.MethodGet, "/dashboard/stats", demo, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/products", demo, models.CreateProductRequest{Name: "Pears", Category: "Fruits"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnconfiguredIntegrations(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@shop.com", models.RoleAdmin)

	w, _ := s.do(http.MethodPost, "/payments/create-payment-intent", admin, models.PaymentIntentRequest{Total: 12.5, Email: "a@b.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "apple.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads/image", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func strPtr(s string) *string { return &s }
