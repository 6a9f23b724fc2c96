package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/dukex/factotum/pkg/channels/gochannel"
	"github.com/dukex/factotum/pkg/channels/kafka"
	"github.com/dukex/factotum/pkg/eventbus"
)

// NewEventBus builds the event bus for the given provider. The in-memory
// gochannel transport is the default for single-process runs.
func NewEventBus(provider string, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")

		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
