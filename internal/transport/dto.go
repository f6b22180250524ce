package transport

import "github.com/danuart/invitation-shop/internal/models"

type GuestEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CreateOrderRequest struct {
	InvitationTemplateID uint              `json:"invitation_template_id"`
	CustomizationData    map[string]string `json:"customization_data"`
	GuestList            []GuestEntry      `json:"guest_list"`
}

// UpdateOrderRequest carries only the parts the caller sent. Nil means the
// field was absent, which is different from an empty value.
type UpdateOrderRequest struct {
	CustomizationData map[string]string `json:"customization_data"`
	GuestList         *[]GuestEntry     `json:"guest_list"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type OrderPage struct {
	Data []models.Order `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type TemplatePage struct {
	Data []models.InvitationTemplate `json:"data"`
	Meta PageMeta                    `json:"meta"`
}

func NewPageMeta(page, limit, offset int, total int64) PageMeta {
	return PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
