package order

import (
	"encoding/json"
	"time"

	orderDatamodel "github.com/boostify/storefront/internal/core/datamodel/order"
	"gorm.io/datatypes"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// transitions holds the allowed forward moves of the order status machine.
// Terminal statuses have no entry.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Details is the purchase snapshot frozen at checkout time so later catalog
// edits do not change what the customer bought.
type Details struct {
	ServiceName    string `json:"service_name"`
	Category       string `json:"category"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Order struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	ServiceID     int64      `json:"service_id"`
	TransactionID string     `json:"transaction_id"`
	Status        string     `json:"status"`
	Quantity      int        `json:"quantity"`
	TargetLink    *string    `json:"target_link,omitempty"`
	TotalAmount   int64      `json:"total_amount"`
	Currency      string     `json:"currency"`
	Details       Details    `json:"details"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (o *Order) IsTerminal() bool {
	return len(transitions[o.Status]) == 0
}

func (o *Order) IsDownloadable() bool {
	return o.Status == StatusCompleted
}

func ToDataModel(o *Order) *orderDatamodel.Order {
	detailsJSON, _ := json.Marshal(o.Details)
	return &orderDatamodel.Order{
		ID:            o.ID,
		UserID:        o.UserID,
		ServiceID:     o.ServiceID,
		TransactionID: o.TransactionID,
		Status:        o.Status,
		Quantity:      o.Quantity,
		TargetLink:    o.TargetLink,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Details:       datatypes.JSON(detailsJSON),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func FromDataModel(m *orderDatamodel.Order) *Order {
	var details Details
	if len(m.Details) > 0 {
		_ = json.Unmarshal(m.Details, &details)
	}
	return &Order{
		ID:            m.ID,
		UserID:        m.UserID,
		ServiceID:     m.ServiceID,
		TransactionID: m.TransactionID,
		Status:        m.Status,
		Quantity:      m.Quantity,
		TargetLink:    m.TargetLink,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		Details:       details,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
