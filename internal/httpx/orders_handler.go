package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/sitestock/procurement/internal/catalog"
	kafkax "github.com/sitestock/procurement/internal/kafka"
	"github.com/sitestock/procurement/internal/orders"
	"github.com/sitestock/procurement/internal/redisx"
)

// Publisher is what the handlers need from a kafka producer. Nil disables
// publishing (tests).
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Engine      *orders.Engine
	Submitted   Publisher
	Approved    Publisher
	Disapproved Publisher
	Redis       *redis.Client
	Service     string
}

type orderResp struct {
	orders.Order
	DisplayCode string `json:"display_code"`
}

func toOrderResp(o orders.Order) orderResp {
	return orderResp{Order: o, DisplayCode: orders.DisplayCode(o.ID)}
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.submit)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.status)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.delete)
	r.Post("/orders/{id}/approve", h.approve)
	r.Post("/orders/{id}/disapprove", h.disapprove)
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeOrderError maps engine errors onto status codes. Validation failures
// come back as a field -> message object, never a crash.
func writeOrderError(w http.ResponseWriter, err error) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
	case errors.Is(err, orders.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *OrdersHandler) submit(w http.ResponseWriter, r *http.Request) {
	var f orders.Form
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Engine.Submit(ctx, f)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(h.Submitted, orders.EventOrderSubmitted, o, r.Header.Get("X-Request-Id"),
		kafkax.MustMarshal(orders.OrderSubmittedPayload{
			OrderID:     o.ID,
			DisplayCode: orders.DisplayCode(o.ID),
			ProductName: o.ProductName,
			ProductCode: o.ProductCode,
			Quantity:    o.Quantity,
			DueDate:     o.DueDate.Format("2006-01-02"),
			ProjectCode: o.ProjectCode,
		}))

	writeJSON(w, http.StatusCreated, toOrderResp(o))
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	all, err := h.Engine.List(ctx)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	out := make([]orderResp, 0, len(all))
	for _, o := range all {
		out = append(out, toOrderResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Engine.Get(ctx, id)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

// status serves the approval-polling read through the redis cache, DB as
// fallback and source of truth.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Engine.Get(ctx, id)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	body := map[string]any{"status": o.Status}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(body), redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var f orders.Form
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Engine.Update(ctx, id, f)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Engine.Delete(ctx, id); err != nil {
		writeOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Engine.Approve, h.Approved, orders.EventOrderApproved)
}

func (h *OrdersHandler) disapprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Engine.Disapprove, h.Disapproved, orders.EventOrderDisapproved)
}

func (h *OrdersHandler) review(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, int64) (orders.Order, error), pub Publisher, eventType string) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := apply(ctx, id)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(pub, eventType, o, r.Header.Get("X-Request-Id"),
		kafkax.MustMarshal(orders.OrderReviewedPayload{
			OrderID:     o.ID,
			DisplayCode: orders.DisplayCode(o.ID),
			Status:      o.Status,
		}))

	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o orders.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	body := kafkax.MustMarshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(pub Publisher, eventType string, o orders.Order, traceID string, payload []byte) {
	if pub == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: orders.DisplayCode(o.ID),
		Payload:       payload,
	}
	pub.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
