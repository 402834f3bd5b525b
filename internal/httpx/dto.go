package httpx

// Request bodies for the POS/admin API. Responses serialize the domain
// types directly; only inputs get dedicated shapes.

type productRequest struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
}

type checkoutRequest struct {
	CustomerName  string         `json:"customer_name"`
	Items         []checkoutItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
}

type checkoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
