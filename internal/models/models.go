package models

import (
	"time"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusPaymentPending = "payment_pending"
	OrderStatusPaid           = "paid"
	OrderStatusCompleted      = "completed"
)

const (
	CategoryWedding     = "wedding"
	CategoryBirthday    = "birthday"
	CategoryAnniversary = "anniversary"
	CategoryBabyShower  = "baby_shower"
	CategoryGraduation  = "graduation"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

type InvitationTemplate struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"not null"                 json:"name"`
	Description  string         `gorm:"not null"                 json:"description"`
	Price        float64        `gorm:"not null"                 json:"price"`
	Category     string         `gorm:"not null;index"           json:"category"`
	PreviewImage string         `json:"preview_image"`
	TemplateData map[string]any `gorm:"serializer:json"          json:"template_data"`
	IsActive     bool           `gorm:"default:true;index"       json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type Order struct {
	ID                   uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               uint               `gorm:"index;not null"           json:"user_id"`
	InvitationTemplateID uint               `gorm:"not null"                 json:"invitation_template_id"`
	OrderNumber          string             `gorm:"uniqueIndex;not null"     json:"order_number"`
	TotalAmount          float64            `gorm:"not null"                 json:"total_amount"`
	Status               string             `gorm:"not null"                 json:"status"`
	CustomizationData    map[string]string  `gorm:"serializer:json"          json:"customization_data"`
	PaymentProof         *string            `json:"payment_proof"`
	PaymentConfirmedAt   *time.Time         `json:"payment_confirmed_at"`
	CompletedAt          *time.Time         `json:"completed_at"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	Template             InvitationTemplate `gorm:"foreignKey:InvitationTemplateID" json:"template"`
	Guests               []Guest            `gorm:"constraint:OnDelete:CASCADE"     json:"guests,omitempty"`
}

// Mutable reports whether the order still accepts customer edits. Orders that
// reached paid or completed are locked.
func (o *Order) Mutable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaymentPending
}

type Guest struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint       `gorm:"index;not null"           json:"order_id"`
	Name       string     `gorm:"not null"                 json:"name"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	RSVPStatus *bool      `json:"rsvp_status"`
	RSVPAt     *time.Time `json:"rsvp_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
