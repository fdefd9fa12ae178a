package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"teto/config"
	"teto/domain/entities"
	"teto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testProductID = "6aefc078-a0da-4998-ae9b-5ff94c18aad5"

func newTestBonusIntake(ledger *testhelpers.MockCreditLedger) *bonusIntake {
	intake := NewBonusIntake(ledger, config.DefaultEconomy()).(*bonusIntake)
	intake.initialInterval = time.Millisecond
	return intake
}

func TestBonusIntake_HandleVote(t *testing.T) {
	t.Parallel()

	t.Run("upvote awards vote bonus", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(30), entities.BonusKindVote).
			Return(&entities.User{UserID: TestUserID, MessageCredits: 60}, nil)

		outcome, err := newTestBonusIntake(ledger).HandleVote(context.Background(), entities.VotePayload{
			Bot:  "1234",
			User: "100",
			Type: "upvote",
		})

		require.NoError(t, err)
		assert.True(t, outcome.Awarded)
		assert.Equal(t, int64(30), outcome.Amount)
		assert.Equal(t, int64(60), outcome.User.MessageCredits)
		ledger.AssertExpectations(t)
	})

	t.Run("test vote is acknowledged without award", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)

		outcome, err := newTestBonusIntake(ledger).HandleVote(context.Background(), entities.VotePayload{
			User: "100",
			Type: "test",
		})

		require.NoError(t, err)
		assert.False(t, outcome.Awarded)
		ledger.AssertNotCalled(t, "AwardBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		payloads := []entities.VotePayload{
			{User: "100", Type: "downvote"},
			{User: "", Type: "upvote"},
			{User: "not-a-number", Type: "upvote"},
			{User: "-5", Type: "upvote"},
		}
		for _, payload := range payloads {
			ledger := new(testhelpers.MockCreditLedger)
			_, err := newTestBonusIntake(ledger).HandleVote(context.Background(), payload)
			assert.ErrorIs(t, err, entities.ErrInvalidPayload, "payload %+v", payload)
			ledger.AssertNotCalled(t, "AwardBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestBonusIntake_HandlePurchase(t *testing.T) {
	t.Parallel()

	paid := func(productID, userID string) entities.PurchasePayload {
		return entities.PurchasePayload{
			Type: entities.PurchaseTypeOrderPaid,
			Data: entities.PurchasePayloadData{
				ProductID: productID,
				Metadata:  map[string]string{"discord_user_id": userID},
			},
		}
	}

	t.Run("mapped product awards its credits", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(150), entities.BonusKindPurchase).
			Return(&entities.User{UserID: TestUserID, MessageCredits: 180}, nil)

		outcome, err := newTestBonusIntake(ledger).HandlePurchase(context.Background(), paid(testProductID, "100"))

		require.NoError(t, err)
		assert.True(t, outcome.Awarded)
		assert.Equal(t, entities.BonusKindPurchase, outcome.Kind)
		ledger.AssertExpectations(t)
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		payload := paid(testProductID, "100")
		payload.Type = "order.refunded"

		outcome, err := newTestBonusIntake(ledger).HandlePurchase(context.Background(), payload)

		require.NoError(t, err)
		assert.False(t, outcome.Awarded)
		ledger.AssertNotCalled(t, "AwardBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown product", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		_, err := newTestBonusIntake(ledger).HandlePurchase(context.Background(), paid("missing", "100"))
		assert.ErrorIs(t, err, entities.ErrInvalidPayload)
	})

	t.Run("missing buyer", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		payload := paid(testProductID, "")
		payload.Data.Metadata = nil
		_, err := newTestBonusIntake(ledger).HandlePurchase(context.Background(), payload)
		assert.ErrorIs(t, err, entities.ErrInvalidPayload)
	})
}

func TestBonusIntake_Retry(t *testing.T) {
	t.Parallel()

	vote := entities.VotePayload{User: "100", Type: "upvote"}

	t.Run("transient failure then success", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(30), entities.BonusKindVote).
			Return(nil, errors.New("connection reset")).Twice()
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(30), entities.BonusKindVote).
			Return(&entities.User{UserID: TestUserID, MessageCredits: 60}, nil).Once()

		outcome, err := newTestBonusIntake(ledger).HandleVote(context.Background(), vote)

		require.NoError(t, err)
		assert.True(t, outcome.Awarded)
		ledger.AssertNumberOfCalls(t, "AwardBonus", 3)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(30), entities.BonusKindVote).
			Return(nil, errors.New("connection reset"))

		_, err := newTestBonusIntake(ledger).HandleVote(context.Background(), vote)

		require.Error(t, err)
		ledger.AssertNumberOfCalls(t, "AwardBonus", 3)
	})

	t.Run("missing user is not retried", func(t *testing.T) {
		ledger := new(testhelpers.MockCreditLedger)
		ledger.On("AwardBonus", mock.Anything, TestUserID, int64(30), entities.BonusKindVote).
			Return(nil, entities.ErrUserNotFound)

		_, err := newTestBonusIntake(ledger).HandleVote(context.Background(), vote)

		assert.ErrorIs(t, err, entities.ErrUserNotFound)
		ledger.AssertNumberOfCalls(t, "AwardBonus", 1)
	})
}
