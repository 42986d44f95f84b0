package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/health"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/service/order"
	"github.com/leathric/storefront/internal/service/wishlist"
)

// Заголовок с идентификатором пользователя. Аутентификация лежит на
// внешнем периметре; сюда приходит уже проверенный идентификатор.
const userIDHeader = "X-User-ID"

// Handler собирает все HTTP-обработчики магазина.
type Handler struct {
	orders    order.Service
	carts     cart.Service
	wishlists wishlist.Service
	products  domain.ProductRepository
	health    *health.Handler
	logger    *log.Entry
}

// NewHandler создаёт HTTP-обработчик поверх сервисов.
func NewHandler(
	orders order.Service,
	carts cart.Service,
	wishlists wishlist.Service,
	products domain.ProductRepository,
	healthHandler *health.Handler,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		orders:    orders,
		carts:     carts,
		wishlists: wishlists,
		products:  products,
		health:    healthHandler,
		logger:    logger,
	}
}

// RegisterRoutes регистрирует все маршруты на ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /livez", health.LivenessHandler)
	if h.health != nil {
		mux.Handle("GET /healthz", h.health)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/orders/{id}/tracking", h.getTracking)
	mux.HandleFunc("POST /api/orders/{id}/confirm-payment", h.confirmPayment)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateStatus)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.cancelOrder)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{productId}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("GET /api/wishlist", h.getWishlist)
	mux.HandleFunc("POST /api/wishlist/items", h.addWishlistItem)
	mux.HandleFunc("GET /api/wishlist/items/{productId}", h.containsWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist/items/{productId}", h.removeWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist", h.clearWishlist)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
}

// userID достаёт идентификатор пользователя из заголовка;
// false означает уже отправленный ответ 401.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "missing " + userIDHeader + " header",
			Code:  "unauthorized",
		})
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return false
	}
	return true
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req placeOrderRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	placed, err := h.orders.PlaceOrder(r.Context(), userID, req.Note)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(placed))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	page, size := pageParams(r)

	orders, total, err := h.orders.ListMyOrders(r.Context(), userID, page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := orderListResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Page:   page,
		Size:   size,
		Total:  total,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	found, err := h.orders.GetOrder(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(found))
}

func (h *Handler) getTracking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	tracking, err := h.orders.GetTracking(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackingResponse(tracking))
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PaymentReference == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "payment_reference is required", Code: "bad_request"})
		return
	}

	updated, err := h.orders.ConfirmPayment(r.Context(), userID, r.PathValue("id"), req.PaymentReference)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	updated, err := h.orders.UpdateOrderStatus(r.Context(), r.PathValue("id"), target, req.Note)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cancelled, err := h.orders.CancelOrder(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(cancelled))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.carts.UpdateItem(r.Context(), userID, r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.carts.RemoveItem(r.Context(), userID, r.PathValue("productId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.wishlists.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistResponse(view))
}

func (h *Handler) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req addWishlistItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.wishlists.Add(r.Context(), userID, req.ProductID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistResponse(view))
}

func (h *Handler) containsWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	contains, err := h.wishlists.Contains(r.Context(), userID, r.PathValue("productId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistContainsResponse{
		ProductID: r.PathValue("productId"),
		Contains:  contains,
	})
}

func (h *Handler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	view, err := h.wishlists.Remove(r.Context(), userID, r.PathValue("productId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishlistResponse(view))
}

func (h *Handler) clearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.wishlists.Clear(r.Context(), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	products, total, err := h.products.List(r.Context(), page, size)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := productListResponse{
		Products: make([]productResponse, 0, len(products)),
		Page:     page,
		Size:     size,
		Total:    total,
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}
