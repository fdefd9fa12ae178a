package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"teto/application"
	"teto/config"
	"teto/domain/entities"
	"teto/domain/services"
	"teto/domain/testhelpers"
	"teto/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey         = "bot-key"
	testTopggToken     = "topgg-secret"
	testPurchaseSecret = "purchase-secret"
	testUserID         = int64(100)
	testGuildID        = int64(1)
	testProductID      = "6aefc078-a0da-4998-ae9b-5ff94c18aad5"
)

type fakeDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeDedup) IsDuplicate(ctx context.Context, source, deliveryID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[source+":"+deliveryID], nil
}

func (f *fakeDedup) Mark(ctx context.Context, source, deliveryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[source+":"+deliveryID] = true
	return nil
}

type fakePrompts struct {
	prompt string
}

func (f *fakePrompts) Get(ctx context.Context) (string, error) { return f.prompt, nil }

func (f *fakePrompts) Set(ctx context.Context, prompt string) error {
	f.prompt = prompt
	return nil
}

type testServer struct {
	store   *memory.Store
	handler http.Handler
	dedup   *fakeDedup
	prompts *fakePrompts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	publisher := &testhelpers.RecordingPublisher{}
	economy := config.DefaultEconomy()

	ledger := services.NewCreditLedger(store.Users(), publisher)
	engagement := services.NewEngagementTracker(store.UserGuilds(), publisher, economy.FeedIntimacyGain)
	guilds := services.NewGuildService(store.Guilds())
	recorder := services.NewMessageRecorder(ledger, guilds, engagement, economy.MessageCreditCost)
	reset := services.NewDailyResetService(store.Users(), store.UserGuilds(), ledger, engagement, publisher, economy.DailyCreditRefillCap)

	dedup := &fakeDedup{seen: make(map[string]bool)}
	prompts := &fakePrompts{}

	server := NewServer(Deps{
		Ledger:      ledger,
		Guilds:      guilds,
		Channels:    services.NewChannelService(store.Channels(), guilds),
		Engagement:  engagement,
		Recorder:    recorder,
		Leaderboard: services.NewLeaderboardService(store.UserGuilds()),
		Bonus:       services.NewBonusIntake(ledger, economy),
		Reset:       application.NewDailyResetWorker(reset, nil, "0 0 * * *"),
		Dedup:       dedup,
		Prompts:     prompts,
	}, Options{
		BotAPIKey:             testAPIKey,
		TopggWebAuthToken:     testTopggToken,
		PurchaseWebhookSecret: testPurchaseSecret,
		RateLimitPerSecond:    1000,
		RateLimitBurst:        1000,
	})

	return &testServer{
		store:   store,
		handler: server.Handler(),
		dedup:   dedup,
		prompts: prompts,
	}
}

func (ts *testServer) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) bot(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return ts.do(t, method, path, "Bearer "+testAPIKey, body)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBotRoutes_RequireBearer(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/users/100", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/users/100", "Bearer nope", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRecordUserMessage(t *testing.T) {
	t.Run("guild message charges one credit and bumps intimacy", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.bot(t, http.MethodPost, "/api/record-user-message", map[string]any{
			"userId":  "100",
			"guildId": "1",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		record := decodeBody[entities.MessageRecord](t, rec)
		assert.Equal(t, testUserID, record.User.UserID)
		assert.Equal(t, entities.DefaultMessageCredits-1, record.User.MessageCredits)
		require.NotNil(t, record.UserGuild)
		assert.Equal(t, 1, record.UserGuild.Intimacy)
		assert.Equal(t, int64(1), record.UserGuild.DailyMessageCount)
	})

	t.Run("direct message has no relationship", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.bot(t, http.MethodPost, "/api/record-user-message", map[string]any{
			"userId": 100,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		record := decodeBody[entities.MessageRecord](t, rec)
		assert.Nil(t, record.UserGuild)
	})

	t.Run("zero balance returns 402 with balance", func(t *testing.T) {
		ts := newTestServer(t)
		_, err := ts.store.Users().Create(context.Background(), testUserID, entities.RoleUser, 0)
		require.NoError(t, err)

		rec := ts.bot(t, http.MethodPost, "/api/record-user-message", map[string]any{
			"userId":  "100",
			"guildId": "1",
		})

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		body := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, entities.ErrInsufficientCredits.Error(), body.Error)
		require.NotNil(t, body.Balance)
		assert.Equal(t, int64(0), *body.Balance)

		_, err = ts.store.UserGuilds().Get(context.Background(), testUserID, testGuildID)
		assert.ErrorIs(t, err, entities.ErrRelationshipNotFound)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.bot(t, http.MethodPost, "/api/record-user-message", map[string]any{
			"userId": "abc",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.bot(t, http.MethodGet, "/api/users/100", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := ts.store.Users().Create(context.Background(), testUserID, entities.RoleUser, 10)
	require.NoError(t, err)

	rec = ts.bot(t, http.MethodPost, "/api/users/100/deduct", map[string]any{"cost": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(6), decodeBody[entities.User](t, rec).MessageCredits)

	rec = ts.bot(t, http.MethodPost, "/api/users/100/deduct", map[string]any{"cost": 7})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	require.NotNil(t, body.Required)
	assert.Equal(t, int64(7), *body.Required)

	rec = ts.bot(t, http.MethodPut, "/api/users/100/role", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entities.RoleAdmin, decodeBody[entities.User](t, rec).Role)

	rec = ts.bot(t, http.MethodGet, "/api/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserGuildEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.bot(t, http.MethodPost, "/api/ensure-user-guild-exists", map[string]any{
		"userId":  "100",
		"guildId": "1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.bot(t, http.MethodPost, "/api/user-guilds/100/1/intimacy", map[string]any{"delta": -5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decodeBody[entities.UserGuild](t, rec).Intimacy)

	rec = ts.bot(t, http.MethodPost, "/api/user-guilds/100/1/feed", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fed := decodeBody[entities.UserGuild](t, rec)
	assert.NotNil(t, fed.LastFeed)
	assert.Equal(t, config.DefaultEconomy().FeedIntimacyGain, fed.Intimacy)

	rec = ts.bot(t, http.MethodPost, "/api/user-guilds/100/1/feed", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.bot(t, http.MethodGet, "/api/user-guilds/100/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for i, intimacy := range []int{3, 9, 3} {
		userID := int64(300 - i*100)
		ts.bot(t, http.MethodPost, "/api/ensure-user-guild-exists", map[string]any{"userId": userID, "guildId": testGuildID})
		_, err := ts.store.UserGuilds().AdjustIntimacy(ctx, userID, testGuildID, intimacy)
		require.NoError(t, err)
	}

	rec := ts.bot(t, http.MethodGet, "/api/leaderboard?guildId=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	board := decodeBody[LeaderboardResponse](t, rec)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, int64(200), board.Entries[0].UserID)
	assert.Equal(t, int64(100), board.Entries[1].UserID)

	rec = ts.bot(t, http.MethodGet, "/api/leaderboard?guildId=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[LeaderboardResponse](t, rec).Entries, 3)

	rec = ts.bot(t, http.MethodGet, "/api/leaderboard?guildId=1&limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.bot(t, http.MethodGet, "/api/leaderboard?guildId=1&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.bot(t, http.MethodGet, "/api/leaderboard?guildId=1&limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.bot(t, http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyResetEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.store.Users().Create(ctx, testUserID, entities.RoleUser, 2)
	require.NoError(t, err)

	rec := ts.bot(t, http.MethodPost, "/api/daily-reset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[entities.DailyResetResult](t, rec)
	assert.Equal(t, 1, result.CreditCount)

	user, err := ts.store.Users().GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEconomy().DailyCreditRefillCap, user.MessageCredits)
}

func TestDailyResetEndpoint_SurvivesClientDisconnect(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.store.Users().Create(ctx, testUserID, entities.RoleUser, 29)
	require.NoError(t, err)

	gone, cancel := context.WithCancel(ctx)
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/daily-reset", nil).WithContext(gone)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[entities.DailyResetResult](t, rec)
	assert.Equal(t, 1, result.CreditCount)

	user, err := ts.store.Users().GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEconomy().DailyCreditRefillCap, user.MessageCredits)
}

func TestSystemPrompt(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.bot(t, http.MethodPut, "/api/system-prompt", map[string]any{"prompt": "be nice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.bot(t, http.MethodGet, "/api/system-prompt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prompt":"be nice"}`, rec.Body.String())
}

func TestVoteWebhook(t *testing.T) {
	vote := map[string]any{"bot": "1", "user": "100", "type": "upvote"}

	t.Run("requires shared secret", func(t *testing.T) {
		ts := newTestServer(t)

		assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/webhook", "", vote).Code)
		assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/webhook", "Bearer "+testTopggToken, vote).Code)
	})

	t.Run("awards vote bonus", func(t *testing.T) {
		ts := newTestServer(t)
		ctx := context.Background()
		_, err := ts.store.Users().Create(ctx, testUserID, entities.RoleUser, 5)
		require.NoError(t, err)

		rec := ts.do(t, http.MethodPost, "/api/webhook", testTopggToken, vote)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		user, err := ts.store.Users().GetByID(ctx, testUserID)
		require.NoError(t, err)
		assert.Equal(t, int64(5)+config.DefaultEconomy().VoteCreditBonus, user.MessageCredits)
		assert.NotNil(t, user.LastVotedAt)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodPost, "/api/webhook", testTopggToken, vote)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("test vote changes nothing", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodPost, "/api/webhook", testTopggToken, map[string]any{"bot": "1", "user": "100", "type": "test"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("redelivery is awarded once", func(t *testing.T) {
		ts := newTestServer(t)
		ctx := context.Background()
		_, err := ts.store.Users().Create(ctx, testUserID, entities.RoleUser, 0)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			raw, err := json.Marshal(vote)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(raw))
			req.Header.Set("Authorization", testTopggToken)
			req.Header.Set("X-Delivery-ID", "delivery-1")
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNoContent, rec.Code)
		}

		user, err := ts.store.Users().GetByID(ctx, testUserID)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultEconomy().VoteCreditBonus, user.MessageCredits)
	})
}

func TestPurchaseWebhook(t *testing.T) {
	purchase := func(id, eventType string) map[string]any {
		return map[string]any{
			"id":   id,
			"type": eventType,
			"data": map[string]any{
				"product_id": testProductID,
				"metadata":   map[string]string{"discord_user_id": "100"},
			},
		}
	}

	t.Run("paid order awards product credits once", func(t *testing.T) {
		ts := newTestServer(t)
		ctx := context.Background()
		_, err := ts.store.Users().Create(ctx, testUserID, entities.RoleUser, 0)
		require.NoError(t, err)

		rec := ts.do(t, http.MethodPost, "/api/webhooks/purchase", testPurchaseSecret, purchase("evt_1", "order.paid"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		outcome := decodeBody[entities.BonusOutcome](t, rec)
		assert.True(t, outcome.Awarded)
		assert.Equal(t, int64(150), outcome.Amount)

		rec = ts.do(t, http.MethodPost, "/api/webhooks/purchase", testPurchaseSecret, purchase("evt_1", "order.paid"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeBody[entities.BonusOutcome](t, rec).Awarded)

		user, err := ts.store.Users().GetByID(ctx, testUserID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), user.MessageCredits)
		assert.Nil(t, user.LastVotedAt)
	})

	t.Run("other events are acknowledged", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodPost, "/api/webhooks/purchase", testPurchaseSecret, purchase("evt_2", "order.refunded"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeBody[entities.BonusOutcome](t, rec).Awarded)
	})

	t.Run("unconfigured secret is 503", func(t *testing.T) {
		server := NewServer(Deps{}, Options{RateLimitPerSecond: 10, RateLimitBurst: 10})
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/purchase", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Authorization", "anything")
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
