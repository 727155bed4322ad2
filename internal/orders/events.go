package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSubmitted   = "OrderSubmitted"
	EventOrderApproved    = "OrderApproved"
	EventOrderDisapproved = "OrderDisapproved"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "procurement-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order display code
	Payload       json.RawMessage `json:"payload"`
}

type OrderSubmittedPayload struct {
	OrderID     int64  `json:"order_id"`
	DisplayCode string `json:"display_code"`
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
	DueDate     string `json:"due_date"` // 2006-01-02
	ProjectCode string `json:"project_code,omitempty"`
}

// OrderReviewedPayload is shared by the approved/disapproved events.
type OrderReviewedPayload struct {
	OrderID     int64  `json:"order_id"`
	DisplayCode string `json:"display_code"`
	Status      Status `json:"status"`
}
