package eventstreamutils

import (
	"fmt"

	"github.com/papercomputeco/masque/pkg/eventstream"
	"github.com/papercomputeco/masque/pkg/eventstream/kafka"
	"github.com/papercomputeco/masque/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      string
	Topic        string
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: kafka.ParseBrokers(o.Brokers),
			Topic:   o.Topic,
		})
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", o.ProviderType)
	}
}
