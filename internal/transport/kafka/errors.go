package kafka

import (
	"errors"
	"fmt"
	"net"

	"github.com/IBM/sarama"

	"parcel-delivery/internal/queue"
)

var unavailable = []error{
	sarama.ErrOutOfBrokers,
	sarama.ErrNotConnected,
	sarama.ErrClosedClient,
	sarama.ErrBrokerNotAvailable,
	sarama.ErrLeaderNotAvailable,
	sarama.ErrNotEnoughReplicas,
	sarama.ErrRequestTimedOut,
}

// classify marks errors caused by an unreachable cluster as queue.ErrBrokerUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return fmt.Errorf("%w: %w", queue.ErrBrokerUnavailable, err)
	}
	for _, target := range unavailable {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", queue.ErrBrokerUnavailable, err)
		}
	}
	return err
}
