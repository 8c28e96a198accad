package picking

// Address is the shipping address attached to a fulfillment order
type Address struct {
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	HouseNr     string `json:"house_nr,omitempty"`
	State       string `json:"state,omitempty"`
	Street      string `json:"street,omitempty"`
	Zip         string `json:"zip,omitempty"`
}

// ShipTo is the recipient block of a fulfillment order
type ShipTo struct {
	Address     Address `json:"address"`
	CompanyName string  `json:"company_name,omitempty"`
	Name        string  `json:"name,omitempty"`
	PhoneNumber string  `json:"phone_number,omitempty"`
}

// ProductCategory is a WMS category reference; category 6468 marks the
// Seni manufacturer
type ProductCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProductAttributes holds the free-form attributes the WMS keeps per product.
// WeclappArticleID links the product to its article-master record.
type ProductAttributes struct {
	ArticleImageID   string `json:"article_image_id,omitempty"`
	WeclappArticleID string `json:"weclapp_article_id,omitempty"`
}

// Product is the WMS product record, reduced to the fields the planners read
type Product struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	SKU               string            `json:"sku"`
	Barcodes          []string          `json:"barcodes,omitempty"`
	ProductCategories []ProductCategory `json:"product_categories,omitempty"`
	UnitsPerPallet    int               `json:"units_per_pallet,omitempty"`
	Attributes        ProductAttributes `json:"attributes,omitempty"`
}

// Item is a single order line
type Item struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	Quantity    int     `json:"quantity"`
	SalesItemID int64   `json:"sales_item_id,omitempty"`
	State       string  `json:"state,omitempty"`
	Product     Product `json:"product"`
}

// FulfillmentOrder is the WMS projection of a sales order that reflects the
// true picking state. Criterium carries the comma-separated tag list with the
// label-share tag, DeliveryDate the raw WMS timestamp without a zone suffix.
type FulfillmentOrder struct {
	ID               int64  `json:"id"`
	SalesOrderID     int64  `json:"sales_order_id"`
	OrderNum         string `json:"order_num,omitempty"`
	State            string `json:"state"`
	Channel          string `json:"channel,omitempty"`
	Priority         int    `json:"priority"`
	ShippingMethodID int64  `json:"shipping_method_id"`
	DeliveryDate     string `json:"delivery_date,omitempty"`
	Criterium        string `json:"criterium,omitempty"`
	WarehouseID      int64  `json:"warehouse_id,omitempty"`
	InsertedAt       string `json:"inserted_at,omitempty"`
	ShipTo           ShipTo `json:"ship_to"`
	Items            []Item `json:"items"`
}

// IsSingleItem reports whether the order has exactly one line, the shape the
// batch planner groups on
func (o *FulfillmentOrder) IsSingleItem() bool {
	return len(o.Items) == 1
}

// User is a WMS warehouse user, resolved from a roster username
type User struct {
	ID        int64  `json:"id"`
	Active    bool   `json:"active,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// PickingOrder is the work unit written back to the WMS. Cart picks group
// several sales orders for one picker; single picks always carry Cart=false.
type PickingOrder struct {
	SalesOrders []int64 `json:"sales_orders"`
	OrdersCount int     `json:"orders_count"`
	Pickers     []int64 `json:"pickers"`
	Cart        bool    `json:"cart"`
	Notes       string  `json:"notes"`
}
