package messaging

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newFakePubSub(t *testing.T, topic string) (*PubSub, *pstest.Server) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	_, err := srv.GServer.CreateTopic(context.Background(), &pubsubpb.Topic{
		Name: "projects/phoneotp/topics/" + topic,
	})
	require.NoError(t, err)

	ps, err := NewPubSub(context.Background(), PubSubConfig{
		ProjectID: "phoneotp",
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.Addr),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		},
	})
	require.NoError(t, err)

	return ps, srv
}

func TestPubSub_Publish(t *testing.T) {
	// Arrange
	ps, srv := newFakePubSub(t, "phone_verified")

	// Act
	res, err := ps.Publish(context.Background(), "phone_verified", OutgoingMessage{
		Body:    []byte(`{"phone":"+15550001111"}`),
		Key:     []byte("+15550001111"),
		Headers: []Header{{Key: "cID", Value: []byte("corr-1")}, {Key: "", Value: []byte("skip")}},
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, "phone_verified", res.Topic)

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, res.MessageID, msgs[0].ID)
	assert.JSONEq(t, `{"phone":"+15550001111"}`, string(msgs[0].Data))
	assert.Equal(t, map[string]string{"cID": "corr-1"}, msgs[0].Attributes)

	require.NoError(t, ps.Close())
}

func TestPubSub_PublishValidation(t *testing.T) {
	ps, _ := newFakePubSub(t, "t")

	_, err := ps.Publish(context.Background(), "", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrPubSubTopicRequired)

	_, err = ps.Publish(context.Background(), "t", OutgoingMessage{Delay: 1})
	assert.ErrorIs(t, err, ErrUnsupported)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ps.Publish(ctx, "t", OutgoingMessage{})
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, ps.Close())
	_, err = ps.Publish(context.Background(), "t", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, ps.Close())
}
