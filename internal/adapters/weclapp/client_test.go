package weclapp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/adapters/weclapp"
	"github.com/altruan/pulpobot/internal/domain/picking"
)

var testAttributes = weclapp.AttributeIDs{
	Level:            "1001",
	PackQuantity:     "1002",
	CartonQuantity:   "1003",
	ShippingQuantity: "1004",
	LevelArtikel:     "2001",
	LevelPackung:     "2002",
	LevelKarton:      "2003",
	LevelKeine:       "2004",
}

func newTestArticles(t *testing.T, handler http.HandlerFunc) *weclapp.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return weclapp.NewClient(weclapp.Config{
		BaseURL:           server.URL + "/",
		APIToken:          "token",
		RequestsPerSecond: 1000,
		Attributes:        testAttributes,
	}, nil)
}

// articleBody builds an article payload with the packaging attributes set
func articleBody(level, pack, carton, shipping string) string {
	return `{
		"id": "9001",
		"articleNumber": "HS-M",
		"name": "Handschuhe M",
		"customAttributes": [
			{"attributeDefinitionId": "1001", "selectedValueId": "` + level + `"},
			{"attributeDefinitionId": "1002", "numberValue": "` + pack + `"},
			{"attributeDefinitionId": "1003", "numberValue": "` + carton + `"},
			{"attributeDefinitionId": "1004", "numberValue": "` + shipping + `"}
		]
	}`
}

func TestClient_UnitsPerPallet_LooksUpByArticleID(t *testing.T) {
	// Arrange
	var gotPath, gotToken string
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("AuthenticationToken")
		w.Write([]byte(articleBody("2001", "2", "6", "8")))
	})
	product := &picking.Product{
		ID:  42,
		SKU: "HS-M",
		Attributes: picking.ProductAttributes{
			WeclappArticleID: "9001",
		},
	}

	// Act
	units, found, err := client.UnitsPerPallet(context.Background(), product)

	// Assert: Artikel level multiplies all three counts
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 96, units)
	assert.Equal(t, "/article/id/9001", gotPath)
	assert.Equal(t, "token", gotToken)
}

func TestClient_UnitsPerPallet_FallsBackToSKUSearch(t *testing.T) {
	var gotQuery string
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"result": [` + articleBody("2002", "2", "6", "8") + `]}`))
	})
	product := &picking.Product{ID: 42, SKU: "HS-M"}

	units, found, err := client.UnitsPerPallet(context.Background(), product)

	// Packung level skips the pack count
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 48, units)
	assert.Contains(t, gotQuery, "sku=HS-M")
	assert.Contains(t, gotQuery, "articleType=STORABLE")
}

func TestClient_UnitsPerPallet_KartonLevelUsesShippingCountOnly(t *testing.T) {
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": [` + articleBody("2003", "2", "6", "8") + `]}`))
	})

	units, found, err := client.UnitsPerPallet(context.Background(), &picking.Product{SKU: "HS-M"})

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 8, units)
}

func TestClient_UnitsPerPallet_LevelKeineIsNotFound(t *testing.T) {
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": [` + articleBody("2004", "2", "6", "8") + `]}`))
	})

	_, found, err := client.UnitsPerPallet(context.Background(), &picking.Product{SKU: "HS-M"})

	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UnitsPerPallet_MissingCountIsNotFound(t *testing.T) {
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": [` + articleBody("2001", "2", "", "8") + `]}`))
	})

	_, found, err := client.UnitsPerPallet(context.Background(), &picking.Product{SKU: "HS-M"})

	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UnitsPerPallet_UnknownSKUIsNotFound(t *testing.T) {
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": []}`))
	})

	_, found, err := client.UnitsPerPallet(context.Background(), &picking.Product{SKU: "GONE"})

	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UnitsPerPallet_ServerErrorSurfaces(t *testing.T) {
	client := newTestArticles(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, _, err := client.UnitsPerPallet(context.Background(), &picking.Product{SKU: "HS-M"})

	assert.Error(t, err)
}
