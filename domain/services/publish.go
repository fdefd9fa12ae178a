package services

import (
	"teto/domain/interfaces"
	"teto/events"

	log "github.com/sirupsen/logrus"
)

// publishEvent hands an event to the publisher; a publish failure never fails the operation
func publishEvent(publisher interfaces.EventPublisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish event")
	}
}
