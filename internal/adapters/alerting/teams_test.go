package alerting_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/adapters/alerting"
)

func TestTeamsWebhook_Notify_PostsTextPayload(t *testing.T) {
	// Arrange
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	t.Cleanup(server.Close)
	webhook := alerting.NewTeamsWebhook(server.URL, nil)

	// Act
	err := webhook.Notify(context.Background(), "Product Handschuhe M has no pallet information")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Product Handschuhe M has no pallet information", got["text"])
}

func TestTeamsWebhook_Notify_UnconfiguredURLIsLogOnly(t *testing.T) {
	webhook := alerting.NewTeamsWebhook("", nil)

	assert.NoError(t, webhook.Notify(context.Background(), "anything"))
}

func TestTeamsWebhook_Notify_ReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)
	webhook := alerting.NewTeamsWebhook(server.URL, nil)

	assert.Error(t, webhook.Notify(context.Background(), "anything"))
}
