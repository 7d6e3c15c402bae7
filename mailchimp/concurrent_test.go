package mailchimp

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipAcross(t *testing.T) {
	ctx := context.Background()
	email := "a@example.com"

	api := newFakeAPI()
	api.on(http.MethodGet, memberPath("L1", email), http.StatusOK, memberBody(email))
	api.on(http.MethodGet, memberPath("L3", email), http.StatusOK, memberBody(email))
	api.on(http.MethodGet, memberPath("L4", email), http.StatusUnauthorized, map[string]any{"status": 401, "detail": "bad key"})

	t.Run("results keep list order", func(t *testing.T) {
		client := newTestClient(t, api, WithConcurrency(2))
		client.SelectCampaign("C1")

		results, err := client.MembershipAcross(ctx, email, []string{"L1", "L2", "L3", "L4"})
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Equal(t, "L1", results[0].ListID)
		assert.True(t, results[0].Member)
		assert.Nil(t, results[0].Envelope)

		assert.Equal(t, "L2", results[1].ListID)
		assert.False(t, results[1].Member)
		assert.Nil(t, results[1].Envelope)

		assert.True(t, results[2].Member)

		require.NotNil(t, results[3].Envelope)
		assert.Equal(t, ErrorCode("401"), results[3].Envelope.Code)

		// the receiver's context and envelope are untouched
		assert.Equal(t, "C1", client.CurrentCampaign())
		assert.Empty(t, client.CurrentList())
		assert.Empty(t, client.CurrentEmail())
		env, err := client.Fetch()
		require.NoError(t, err)
		assert.Equal(t, Envelope{}, env)
	})

	t.Run("falls back to current address", func(t *testing.T) {
		client := newTestClient(t, api)
		client.current.Email = email

		results, err := client.MembershipAcross(ctx, "", []string{"L1"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Member)
	})

	t.Run("invalid email", func(t *testing.T) {
		client := newTestClient(t, api)
		before := api.count()

		results, err := client.MembershipAcross(ctx, "nope", []string{"L1", "L2"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, res := range results {
			require.NotNil(t, res.Envelope)
			assert.Equal(t, CodeInvalidEmail, res.Envelope.Code)
		}
		assert.Equal(t, before, api.count())
	})

	t.Run("no address", func(t *testing.T) {
		client := newTestClient(t, api)
		_, err := client.MembershipAcross(ctx, "", []string{"L1"})
		assert.ErrorIs(t, err, ErrMissingContext)
	})

	t.Run("empty list id is fatal", func(t *testing.T) {
		client := newTestClient(t, api)
		client.SelectList("L1")

		_, err := client.MembershipAcross(ctx, email, []string{"L1", ""})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingContext)
		assert.NoError(t, client.Err())
	})
}
