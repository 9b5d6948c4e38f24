package consumers

import (
	"context"
	"fmt"

	"storefront/infra/rabbitmq"
	"storefront/internal/catalog"
	"storefront/pkg/events"

	"go.uber.org/zap"
)

// FeedNotifier adapts the RabbitMQ change feed to the sync engine's
// Notifier port. Every catalog event on the exchange fires onChange;
// the engine then re-reads the full snapshot from the repository. The
// event payload itself is deliberately ignored so consumers stay on
// the snapshot contract rather than applying diffs.
type FeedNotifier struct {
	url         string
	serviceName string
}

func NewFeedNotifier(url, serviceName string) *FeedNotifier {
	return &FeedNotifier{
		url:         url,
		serviceName: serviceName,
	}
}

func (n *FeedNotifier) Subscribe(ctx context.Context, collection string, onChange func()) (catalog.Subscription, error) {
	consumer, err := rabbitmq.NewConsumer(n.url, rabbitmq.ConsumerConfig{
		Exchange:      events.CatalogExchange,
		QueueName:     fmt.Sprintf("%s.%s.feed.v1", n.serviceName, collection),
		RoutingKeys:   []string{"item.#"},
		ServiceName:   n.serviceName,
		PrefetchCount: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to catalog feed: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		err := consumer.Consume(subCtx, func(_ context.Context, event *events.Event) error {
			zap.L().Debug("catalog change signal",
				zap.String("event", event.Event),
				zap.String("traceId", event.TraceID),
			)
			onChange()
			return nil
		})
		if err != nil && err != context.Canceled {
			zap.L().Error("Catalog feed consumer stopped", zap.Error(err))
		}
	}()

	return &feedSubscription{
		cancel:   cancel,
		consumer: consumer,
	}, nil
}

type feedSubscription struct {
	cancel   context.CancelFunc
	consumer *rabbitmq.Consumer
}

func (s *feedSubscription) Close() error {
	s.cancel()
	return s.consumer.Close()
}
