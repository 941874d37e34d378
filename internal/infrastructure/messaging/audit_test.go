package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/mq"
)

func TestAuditHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := NewAuditHandler(zap.New(core))

	event := review.NewEvent(review.EventCreated, &review.Review{ID: 7, BookID: 3, UserID: 2, Rating: 5})
	body, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), mq.Message{RoutingKey: event.Type, Body: body}))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, review.EventCreated, fields["type"])
	assert.EqualValues(t, 7, fields["review_id"])
	assert.EqualValues(t, 5, fields["rating"])
}

func TestAuditHandler_MalformedIsAcked(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := NewAuditHandler(zap.New(core))

	err := handle(context.Background(), mq.Message{RoutingKey: "review.created", Body: []byte("{not json")})
	assert.NoError(t, err)
	require.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}
