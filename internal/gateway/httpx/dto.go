package httpx

type OpenSessionRequest struct {
	BusinessID string `json:"business_id"`
}

type SessionResponse struct {
	SessionID      string `json:"session_id"`
	BusinessID     string `json:"business_id"`
	CatalogVersion string `json:"catalog_version"`
}

type AddLineRequest struct {
	ItemID   string   `json:"item_id"`
	SizeID   string   `json:"size_id,omitempty"`
	ExtraIDs []string `json:"extra_ids,omitempty"`
}

type CartLineResponse struct {
	Key       string `json:"key"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Stale     bool   `json:"stale"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Total     string             `json:"total"`
}

type CatalogItemResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Price      string            `json:"price"`
	CategoryID string            `json:"category_id"`
	Image      string            `json:"image,omitempty"`
	Available  bool              `json:"available"`
	Sizes      []VariantResponse `json:"sizes,omitempty"`
	Extras     []VariantResponse `json:"extras,omitempty"`
}

type VariantResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CatalogResponse struct {
	Version    string                `json:"version"`
	Categories []CategoryResponse    `json:"categories"`
	Items      []CatalogItemResponse `json:"items"`
}

type CheckoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes,omitempty"`

	// Channel selects the handoff sink: "whatsapp" or "store".
	Channel string `json:"channel"`
}

type CheckoutResponse struct {
	Order    OrderResponse `json:"order"`
	Message  string        `json:"message"`
	DeepLink string        `json:"deep_link,omitempty"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Business      string              `json:"business"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Lines         []OrderLineResponse `json:"lines"`
	Notes         string              `json:"notes,omitempty"`
	GrandTotal    string              `json:"grand_total"`
	CreatedAt     string              `json:"created_at"`
}

type OrderLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
