package http

import (
	"time"

	"github.com/leathric/storefront/internal/domain"
	"github.com/leathric/storefront/internal/service/cart"
	"github.com/leathric/storefront/internal/service/order"
	"github.com/leathric/storefront/internal/service/wishlist"
)

type placeOrderRequest struct {
	Note string `json:"note"`
}

type confirmPaymentRequest struct {
	PaymentReference string `json:"payment_reference"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type addWishlistItemRequest struct {
	ProductID string `json:"product_id"`
}

type orderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type historyEntryResponse struct {
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type orderResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	Status        string                 `json:"status"`
	PaymentStatus string                 `json:"payment_status"`
	TotalAmount   string                 `json:"total_amount"`
	Note          string                 `json:"note,omitempty"`
	Items         []orderItemResponse    `json:"items"`
	History       []historyEntryResponse `json:"history"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
	Total  int             `json:"total"`
}

type trackingResponse struct {
	OrderID       string                 `json:"order_id"`
	Number        string                 `json:"number"`
	Status        string                 `json:"status"`
	PaymentStatus string                 `json:"payment_status"`
	TotalAmount   string                 `json:"total_amount"`
	History       []historyEntryResponse `json:"history"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type cartItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type cartResponse struct {
	CartID string             `json:"cart_id"`
	Items  []cartItemResponse `json:"items"`
	Total  string             `json:"total"`
}

type wishlistItemResponse struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

type wishlistResponse struct {
	WishlistID string                 `json:"wishlist_id"`
	Items      []wishlistItemResponse `json:"items"`
}

type wishlistContainsResponse struct {
	ProductID string `json:"product_id"`
	Contains  bool   `json:"contains"`
}

type productResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price"`
	StockQuantity int32  `json:"stock_quantity"`
	ImageURL      string `json:"image_url,omitempty"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
	Total    int               `json:"total"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price.StringFixed(2),
			LineTotal:   item.LineTotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Note:          o.Note,
		Items:         items,
		History:       toHistoryResponse(o.History),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toHistoryResponse(history []domain.OrderStatusHistory) []historyEntryResponse {
	entries := make([]historyEntryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, historyEntryResponse{
			Status:     string(entry.Status),
			Note:       entry.Note,
			OccurredAt: entry.OccurredAt,
		})
	}
	return entries
}

func toTrackingResponse(t order.Tracking) trackingResponse {
	return trackingResponse{
		OrderID:       t.OrderID,
		Number:        t.Number,
		Status:        string(t.Status),
		PaymentStatus: string(t.PaymentStatus),
		TotalAmount:   t.TotalAmount.StringFixed(2),
		History:       toHistoryResponse(t.History),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toCartResponse(view cart.View) cartResponse {
	items := make([]cartItemResponse, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, cartItemResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}
	return cartResponse{CartID: view.CartID, Items: items, Total: view.Total.StringFixed(2)}
}

func toWishlistResponse(view wishlist.View) wishlistResponse {
	items := make([]wishlistItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, wishlistItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			AddedAt:     item.AddedAt,
		})
	}
	return wishlistResponse{WishlistID: view.WishlistID, Items: items}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
	}
}
