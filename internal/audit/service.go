package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/sitestock/procurement/internal/kafka"
	"github.com/sitestock/procurement/internal/logx"
	"github.com/sitestock/procurement/internal/orders"
	"github.com/sitestock/procurement/internal/redisx"
)

// Service consumes the order event stream: dedups by event id, refreshes
// the order status cache and writes one audit line per event. Stock is not
// touched here; reservation happened synchronously at submission.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent dipasang sebagai handler consumer untuk ketiga topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderSubmitted:
		p, err := kafkax.UnwrapPayload[orders.OrderSubmittedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, orders.StatusPending)
		logx.L().WithFields(logrus.Fields{
			"event":        env.EventType,
			"order":        p.DisplayCode,
			"product_code": p.ProductCode,
			"quantity":     p.Quantity,
			"producer":     env.Producer,
		}).Info("order submitted")
	case orders.EventOrderApproved, orders.EventOrderDisapproved:
		p, err := kafkax.UnwrapPayload[orders.OrderReviewedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, p.Status)
		logx.L().WithFields(logrus.Fields{
			"event":    env.EventType,
			"order":    p.DisplayCode,
			"status":   p.Status,
			"producer": env.Producer,
		}).Info("order reviewed")
	default:
		// unknown event type: commit and move on
	}
	return nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID int64, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body := kafkax.MustMarshal(map[string]any{"status": status})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
