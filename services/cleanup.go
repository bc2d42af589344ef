package services

import (
	"context"
	"time"

	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/utils/log"
	"github.com/sirupsen/logrus"
)

// imageCleaner runs the second phase of a two-phase delete: the store rows
// are already gone and the hosted images follow on a best-effort basis.
type imageCleaner struct {
	images imagehost.Host
	events events.Publisher
}

// cleanup deletes keys from the image host. Keys that could not be deleted
// are logged, reported as an image.cleanup_failed event and returned.
func (c imageCleaner) cleanup(ctx context.Context, reason string, keys ...string) []string {
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return nil
	}

	err := c.images.Delete(ctx, keys...)
	if err == nil {
		return nil
	}

	log.Log.WithError(err).WithFields(logrus.Fields{
		"reason": reason,
		"keys":   keys,
	}).Error("image cleanup failed, objects orphaned")

	publish(c.events, events.ImageCleanupFailed, events.ImageCleanupFailedEvent{
		Keys:   keys,
		Reason: reason,
		Error:  err.Error(),
		At:     time.Now(),
	})
	return keys
}

func nonEmpty(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// publish never fails the calling operation.
func publish(pub events.Publisher, subject string, payload interface{}) {
	if err := pub.Publish(subject, payload); err != nil {
		log.Log.WithError(err).WithField("subject", subject).Warn("failed to publish event")
	}
}
