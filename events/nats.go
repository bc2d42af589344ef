package events

import (
	"encoding/json"
	"time"

	"github.com/benjibook/api-go/utils/log"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	ClientName    string
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "connect to NATS")
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "marshal %s event", subject)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.Wrapf(err, "publish %s", subject)
	}
	log.Log.WithField("subject", subject).Debug("published event")
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}
