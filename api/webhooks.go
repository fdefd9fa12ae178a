package api

import (
	"context"
	"net/http"
	"strings"

	"teto/domain/entities"
	"teto/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	sourceTopgg    = "topgg"
	sourcePurchase = "purchase"
)

// handleVoteWebhook processes a top.gg vote delivery
func (s *Server) handleVoteWebhook(w http.ResponseWriter, r *http.Request) {
	var payload entities.VotePayload
	if err := decodeJSON(r, &payload); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues(sourceTopgg, "rejected").Inc()
		respondWithDomainError(w, r, err)
		return
	}

	deliveryID := strings.TrimSpace(r.Header.Get("X-Delivery-ID"))
	s.processDelivery(w, r, sourceTopgg, deliveryID, func(ctx context.Context) (*entities.BonusOutcome, error) {
		return s.deps.Bonus.HandleVote(ctx, payload)
	}, func(w http.ResponseWriter, outcome *entities.BonusOutcome) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// handlePurchaseWebhook processes a storefront order delivery
func (s *Server) handlePurchaseWebhook(w http.ResponseWriter, r *http.Request) {
	var payload entities.PurchasePayload
	if err := decodeJSON(r, &payload); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues(sourcePurchase, "rejected").Inc()
		respondWithDomainError(w, r, err)
		return
	}

	deliveryID := strings.TrimSpace(r.Header.Get("X-Delivery-ID"))
	if deliveryID == "" {
		deliveryID = payload.ID
	}

	s.processDelivery(w, r, sourcePurchase, deliveryID, func(ctx context.Context) (*entities.BonusOutcome, error) {
		return s.deps.Bonus.HandlePurchase(ctx, payload)
	}, func(w http.ResponseWriter, outcome *entities.BonusOutcome) {
		writeJSON(w, http.StatusOK, outcome)
	})
}

// processDelivery runs handle at most once per delivery id when a deduplicator is configured.
// The delivery is marked only after a successful award so failed deliveries can be redelivered.
func (s *Server) processDelivery(
	w http.ResponseWriter,
	r *http.Request,
	source, deliveryID string,
	handle func(ctx context.Context) (*entities.BonusOutcome, error),
	respond func(w http.ResponseWriter, outcome *entities.BonusOutcome),
) {
	ctx := r.Context()
	dedup := s.deps.Dedup != nil && deliveryID != ""

	if dedup {
		duplicate, err := s.deps.Dedup.IsDuplicate(ctx, source, deliveryID)
		if err != nil {
			// Fall through: a double award is preferable to dropping the delivery
			log.WithFields(log.Fields{
				"source":      source,
				"delivery_id": deliveryID,
				"error":       err,
			}).Warn("Delivery dedup check failed")
		} else if duplicate {
			metrics.WebhookDeliveriesTotal.WithLabelValues(source, "duplicate").Inc()
			respond(w, &entities.BonusOutcome{Reason: "duplicate delivery"})
			return
		}
	}

	outcome, err := handle(ctx)
	if err != nil {
		result := "error"
		if statusForError(err) < http.StatusInternalServerError {
			result = "rejected"
		}
		metrics.WebhookDeliveriesTotal.WithLabelValues(source, result).Inc()
		respondWithDomainError(w, r, err)
		return
	}

	if outcome.Awarded {
		metrics.WebhookDeliveriesTotal.WithLabelValues(source, "awarded").Inc()
		if dedup {
			if err := s.deps.Dedup.Mark(ctx, source, deliveryID); err != nil {
				log.WithFields(log.Fields{
					"source":      source,
					"delivery_id": deliveryID,
					"error":       err,
				}).Warn("Failed to mark delivery processed")
			}
		}
	} else {
		metrics.WebhookDeliveriesTotal.WithLabelValues(source, "ignored").Inc()
	}

	respond(w, outcome)
}
