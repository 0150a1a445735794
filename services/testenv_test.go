package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"freshfetch/config"
	"freshfetch/models"
	"freshfetch/repositories"

	"github.com/stretchr/testify/require"
)

func init() {
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	delay time.Duration
}

func (m *fakeMailer) SendOrderConfirmation(order *models.Order) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, order.Email)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	store     *repositories.Store
	mailer    *fakeMailer
	auth      *AuthService
	users     *UserService
	products  *ProductService
	cart      *CartService
	orders    *OrderService
	dashboard *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	cache := NewProductCache(nil)
	mailer := &fakeMailer{}
	return &testEnv{
		store:     store,
		mailer:    mailer,
		auth:      NewAuthService(store.Users),
		users:     NewUserService(store.Users),
		products:  NewProductService(store.Products, store.Users, cache),
		cart:      NewCartService(store.Products),
		orders:    NewOrderService(store.Orders, store.Products, cache, mailer),
		dashboard: NewDashboardService(store.Products, store.Orders, store.Users),
	}
}

func (e *testEnv) seedProduct(t *testing.T, p models.Product) *models.Product {
	t.Helper()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	require.NoError(t, e.store.Products.Create(context.Background(), &p))
	return &p
}

func (e *testEnv) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.store.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

var (
	adminPrincipal   = models.Principal{UserID: "aaaaaaaaaaaaaaaaaaaaaaaa", Email: "admin@shop.com", Role: models.RoleAdmin}
	managerPrincipal = models.Principal{UserID: "bbbbbbbbbbbbbbbbbbbbbbbb", Email: "manager@shop.com", Role: models.RoleManager}
	buyerPrincipal   = models.Principal{UserID: "cccccccccccccccccccccccc", Email: "buyer@example.com", Role: models.RoleUser}
	otherPrincipal   = models.Principal{UserID: "dddddddddddddddddddddddd", Email: "other@example.com", Role: models.RoleUser}
)
