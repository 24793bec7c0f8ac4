package mocks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/phrazzld/obsolescence-tutor/internal/gateway"
	"github.com/phrazzld/obsolescence-tutor/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway(t *testing.T) {
	t.Parallel()

	t.Run("Queued replies then default", func(t *testing.T) {
		t.Parallel()

		gw, session := mocks.NewMockGatewayWithReplies("um", "dois")
		session.Err = gateway.ErrTransientFailure

		sess, err := gw.NewSession(context.Background())
		require.NoError(t, err)

		first, err := sess.Send(context.Background(), "a")
		assert.NoError(t, err)
		assert.Equal(t, "um", first)

		second, err := sess.Send(context.Background(), "b")
		assert.NoError(t, err)
		assert.Equal(t, "dois", second)

		_, err = sess.Send(context.Background(), "c")
		assert.ErrorIs(t, err, gateway.ErrTransientFailure)

		assert.Equal(t, 1, gw.SessionCount())
		assert.Equal(t, 3, session.SendCount())
		assert.Equal(t, []string{"a", "b", "c"}, session.Messages())
	})

	t.Run("Session error", func(t *testing.T) {
		t.Parallel()

		gw := &mocks.MockGateway{Err: gateway.ErrInvalidConfig}
		sess, err := gw.NewSession(context.Background())
		assert.ErrorIs(t, err, gateway.ErrInvalidConfig)
		assert.Nil(t, sess)
	})

	t.Run("Custom functions", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		session := &mocks.MockSession{
			SendFn: func(ctx context.Context, message string) (string, error) {
				return "", boom
			},
		}
		gw := &mocks.MockGateway{
			NewSessionFn: func(ctx context.Context) (gateway.Session, error) {
				return session, nil
			},
		}

		sess, err := gw.NewSession(context.Background())
		require.NoError(t, err)
		_, err = sess.Send(context.Background(), "x")
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, session.SendCount())
	})
}

func TestReplyJSON(t *testing.T) {
	t.Parallel()

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mocks.ReplyJSON("Vamos!", nil, gateway.ActionStartQuiz)), &doc))

	assert.Equal(t, "Vamos!", doc[gateway.FieldResponse])
	assert.Equal(t, []interface{}{}, doc[gateway.FieldSuggestions])
	assert.Equal(t, gateway.ActionStartQuiz, doc[gateway.FieldAction])

	var plain map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mocks.ReplyJSON("Oi", []string{"a"}, "")), &plain))
	assert.NotContains(t, plain, gateway.FieldAction)
	assert.Equal(t, []interface{}{"a"}, plain[gateway.FieldSuggestions])
}
