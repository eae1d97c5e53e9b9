package validation

import "encoding/json"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,max=256"`
}

// RSVPRequest is the body of POST /api/rsvp. The guest cap per user is
// checked by the RSVP service.
type RSVPRequest struct {
	Attending           *bool   `json:"attending" binding:"required"`
	Guests              *int    `json:"guests" binding:"required,min=1,max=50"`
	DietaryRestrictions *string `json:"dietaryRestrictions" binding:"omitempty,max=500"`
	Message             *string `json:"message" binding:"omitempty,max=1000"`
}

// GiftCreateRequest is the body of POST /api/gifts.
type GiftCreateRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Price       string  `json:"price" binding:"required,max=50"`
	URL         *string `json:"url" binding:"omitempty,http_url,max=2048"`
	Image       string  `json:"image" binding:"required,max=2048"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// GiftPurchaseRequest is the body of PUT /api/gifts/:id. Only the purchase
// flag is read; the purchaser always comes from the session.
type GiftPurchaseRequest struct {
	Purchased *bool `json:"purchased" binding:"required"`
}

// SettingUpdateRequest is the body of PUT /api/admin/settings/:key.
type SettingUpdateRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}
