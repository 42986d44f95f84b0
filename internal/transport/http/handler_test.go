package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/service/order"
	"github.com/leathric/storefront/internal/service/wishlist"
	"github.com/leathric/storefront/internal/storage/memory"
	transport "github.com/leathric/storefront/internal/transport/http"
)

type fixture struct {
	mux      *http.ServeMux
	products *memory.ProductRepository
	users    *memory.UserRepository
	carts    *memory.CartRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "http-test")

	orders := memory.NewOrderRepository()
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	users := memory.NewUserRepository()
	wishlists := memory.NewWishlistRepository()
	txm := memory.NewTxManager(orders, products, carts, users, wishlists)

	orderSvc := order.NewServiceWithoutMetrics(txm, orders, products, products, carts, users, logger)
	cartSvc := cart.NewService(carts, products, logger)
	wishlistSvc := wishlist.NewService(wishlists, products, logger)

	mux := http.NewServeMux()
	handler := transport.NewHandler(orderSvc, cartSvc, wishlistSvc, products, nil, logger)
	handler.RegisterRoutes(mux)

	return &fixture{mux: mux, products: products, users: users, carts: carts}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, domain.User{ID: "user-1", Email: "u1@example.com"}))
	require.NoError(t, f.products.Create(ctx, domain.Product{
		ID:            "prod-a",
		Name:          "Leather Jacket",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: 5,
	}))
	require.NoError(t, f.products.Create(ctx, domain.Product{
		ID:            "prod-b",
		Name:          "Leather Belt",
		Price:         decimal.RequireFromString("5.00"),
		StockQuantity: 2,
	}))
}

func (f *fixture) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestMissingUserHeader(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/cart/items", "user-1",
		map[string]interface{}{"product_id": "prod-a", "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/cart/items", "user-1",
		map[string]interface{}{"product_id": "prod-b", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/orders", "user-1", map[string]string{"note": "gift"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID          string `json:"id"`
		Number      string `json:"number"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
		History     []struct {
			Status string `json:"status"`
			Note   string `json:"note"`
		} `json:"history"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "CREATED", resp.Status)
	require.Equal(t, "35.00", resp.TotalAmount)
	require.Len(t, resp.History, 1)
	require.Equal(t, "Order created from cart", resp.History[0].Note)

	// Корзина после оформления пуста.
	rec = f.do(t, http.MethodGet, "/api/cart", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cartResp struct {
		Items []interface{} `json:"items"`
	}
	decode(t, rec, &cartResp)
	require.Empty(t, cartResp.Items)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/orders", "user-1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "cart_empty", resp.Code)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/cart/items", "user-1",
		map[string]interface{}{"product_id": "prod-b", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	// Сервис оформления проверяет остаток повторно: уменьшаем его
	// напрямую, как будто другой покупатель успел первым.
	require.NoError(t, f.products.Reserve(context.Background(), "prod-b", 1))

	rec = f.do(t, http.MethodPost, "/api/orders", "user-1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "insufficient_stock", resp.Code)
}

func placeOrderViaAPI(t *testing.T, f *fixture) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/cart/items", "user-1",
		map[string]interface{}{"product_id": "prod-a", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/orders", "user-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	orderID := placeOrderViaAPI(t, f)

	rec := f.do(t, http.MethodPost, "/api/orders/"+orderID+"/confirm-payment", "user-1",
		map[string]string{"payment_reference": "pay-123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "CONFIRMED", resp.Status)
	require.Equal(t, "COMPLETED", resp.PaymentStatus)

	// Повторное подтверждение — конфликт состояния.
	rec = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/confirm-payment", "user-1",
		map[string]string{"payment_reference": "pay-456"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	orderID := placeOrderViaAPI(t, f)

	// Неизвестный статус.
	rec := f.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", "user-1",
		map[string]string{"status": "TELEPORTED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Недопустимый прыжок CREATED -> PACKED.
	rec = f.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", "user-1",
		map[string]string{"status": "PACKED"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "illegal_transition", resp.Code)
}

func TestCancelEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	orderID := placeOrderViaAPI(t, f)

	// Чужой пользователь получает 403.
	require.NoError(t, f.users.Create(context.Background(), domain.User{ID: "user-2", Email: "u2@example.com"}))
	rec := f.do(t, http.MethodPost, "/api/orders/"+orderID+"/cancel", "user-2", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/cancel", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "CANCELLED", resp.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/orders/missing", "user-1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackingEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	orderID := placeOrderViaAPI(t, f)

	rec := f.do(t, http.MethodGet, "/api/orders/"+orderID+"/tracking", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Number        string `json:"number"`
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
		TotalAmount   string `json:"total_amount"`
		History       []struct {
			Status string `json:"status"`
		} `json:"history"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Number)
	require.Equal(t, "CREATED", resp.Status)
	require.Equal(t, "PENDING", resp.PaymentStatus)
	require.Equal(t, "10.00", resp.TotalAmount)
	require.Len(t, resp.History, 1)
}

func TestWishlistEndpoints(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodPost, "/api/wishlist/items", "user-1",
		map[string]string{"product_id": "prod-a"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Дубликат — 409.
	rec = f.do(t, http.MethodPost, "/api/wishlist/items", "user-1",
		map[string]string{"product_id": "prod-a"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/wishlist", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []struct {
			ProductID string `json:"product_id"`
		} `json:"items"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "prod-a", resp.Items[0].ProductID)

	rec = f.do(t, http.MethodGet, "/api/wishlist/items/prod-a", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var containsResp struct {
		Contains bool `json:"contains"`
	}
	decode(t, rec, &containsResp)
	require.True(t, containsResp.Contains)

	rec = f.do(t, http.MethodGet, "/api/wishlist/items/prod-b", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &containsResp)
	require.False(t, containsResp.Contains)
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Products []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		} `json:"products"`
		Total int `json:"total"`
	}
	decode(t, rec, &listResp)
	require.Equal(t, 2, listResp.Total)
	require.Len(t, listResp.Products, 2)

	rec = f.do(t, http.MethodGet, "/api/products/prod-a", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/products/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderListEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	placeOrderViaAPI(t, f)
	placeOrderViaAPI(t, f)

	rec := f.do(t, http.MethodGet, "/api/orders?page=1&size=1", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []interface{} `json:"orders"`
		Total  int           `json:"total"`
	}
	decode(t, rec, &resp)
	require.Equal(t, 2, resp.Total)
	require.Len(t, resp.Orders, 1)
}
