package orders

import (
	"fmt"
	"time"
)

type Order struct {
	ID int64 `json:"id"`

	// Denormalized product reference, captured at order time. Not a live
	// link: later product edits or deletion leave this untouched.
	ProductName string `json:"product_name"`
	ProductCode string `json:"product_code"`

	Quantity  int       `json:"quantity"`
	OrderDate time.Time `json:"order_date"`
	DueDate   time.Time `json:"due_date"`
	Status    Status    `json:"status"`

	ProjectName       string `json:"project_name"`
	ProjectCode       string `json:"project_code"`
	OrderName         string `json:"order_name"`
	ProjectPhase      string `json:"project_phase"`
	ProjectConsultant string `json:"project_consultant"`
	ProjectLocation   string `json:"project_location"`
}

// DisplayCode renders the external order number, e.g. id=7 -> "M-007".
// Ids past three digits are not truncated: id=1000 -> "M-1000".
func DisplayCode(id int64) string {
	return fmt.Sprintf("M-%03d", id)
}
