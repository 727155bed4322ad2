package orders

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// FieldForm keys errors that belong to the whole form rather than a field.
const FieldForm = "form"

const (
	msgRequired          = "This field is required."
	msgPositiveQuantity  = "Quantity must be a positive integer."
	msgInvalidDate       = "Enter a valid date (YYYY-MM-DD)."
	msgInvalid           = "Enter a valid value."
	msgMissingProductRef = "Both product name and code are required."
	msgProductNotFound   = "Product not found. Please enter a valid product name and code."
	msgPastDueDate       = "Due date cannot be in the past."
	msgOnlyAvailable     = "Only %d available. Cannot order more than that."
)

// Form is an order submission. Static rules live in the validate tags;
// the rules that need the catalog (product resolution, stock) are applied
// by the engine on top.
type Form struct {
	ProductName       string `json:"product_name" validate:"required"`
	ProductCode       string `json:"product_code" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,gt=0"`
	DueDate           string `json:"due_date" validate:"required,datetime=2006-01-02"`
	ProjectName       string `json:"project_name" validate:"required"`
	ProjectCode       string `json:"project_code" validate:"required"`
	OrderName         string `json:"order_name" validate:"required"`
	ProjectPhase      string `json:"project_phase" validate:"required"`
	ProjectConsultant string `json:"project_consultant" validate:"required"`
	ProjectLocation   string `json:"project_location" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report errors under the json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors runs the static rules: one message per field, first error wins.
func (f Form) fieldErrors() map[string]string {
	out := map[string]string{}
	err := validate.Struct(f)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[FieldForm] = msgInvalid
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = staticMessage(fe)
	}
	return out
}

func staticMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "gt":
		return msgPositiveQuantity
	case "datetime":
		return msgInvalidDate
	}
	return msgInvalid
}

// dueDate parses the submitted date; ok is false when the static datetime
// rule has already rejected it.
func (f Form) dueDate() (time.Time, bool) {
	t, err := time.Parse(dateLayout, f.DueDate)
	return t, err == nil
}

// ValidationError is a structured rejection: field name (or FieldForm) to
// message. Never fatal; the caller fixes the input and resubmits.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
