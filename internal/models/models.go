package models

import "time"

// UnknownStore is shown for products whose seller record is missing.
const UnknownStore = "Unknown Store"

type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description"`
	Price       int64     `json:"price" bson:"price"`
	ImageURL    string    `json:"image_url,omitempty" bson:"imageUrl,omitempty"`
	SellerID    string    `json:"seller_id" bson:"sellerId"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
	Keywords    []string  `json:"keywords,omitempty" bson:"keywords,omitempty"`
}

type Seller struct {
	ID               string    `json:"id" bson:"_id"`
	OwnerName        string    `json:"owner_name,omitempty" bson:"ownerName,omitempty"`
	StoreName        string    `json:"store_name" bson:"storeName"`
	StoreNameLower   string    `json:"store_name_lower" bson:"storeNameLower"`
	StoreSlug        string    `json:"store_slug" bson:"storeSlug"`
	Phone            string    `json:"phone" bson:"phone"`
	StoreDescription string    `json:"store_description,omitempty" bson:"storeDescription,omitempty"`
	Email            string    `json:"email,omitempty" bson:"email,omitempty"`
	SellerCode       string    `json:"seller_code,omitempty" bson:"sellerCode,omitempty"`
	Active           bool      `json:"active" bson:"active"`
	ProductCount     int       `json:"product_count" bson:"productCount"`
	CreatedAt        time.Time `json:"created_at" bson:"createdAt"`
}

// EnrichedProduct is a Product joined with its seller's public profile.
// It only lives inside the feed pipeline and is never written back.
type EnrichedProduct struct {
	Product
	StoreName   string `json:"store_name"`
	SellerPhone string `json:"seller_phone,omitempty"`
	StoreSlug   string `json:"store_slug,omitempty"`
	Attributed  bool   `json:"attributed"`
}
