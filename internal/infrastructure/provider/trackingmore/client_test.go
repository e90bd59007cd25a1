package trackingmore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

const createdPayload = `{
  "meta": {"code": 200, "message": "Request response is successful"},
  "data": {
    "tracking_number": "CZ1234567890123",
    "courier_code": "ppl",
    "delivery_status": "transit",
    "original_country": "CZ",
    "destination_country": "",
    "origin_info": {"trackinfo": [
      {"Date": "2024-05-01 08:00:00", "Details": "Praha", "checkpoint_status": "transit", "StatusDescription": "Departed"}
    ]},
    "destination_info": {"trackinfo": [
      {"Date": "2024-05-01T10:00:00Z", "Details": "", "checkpoint_status": "", "StatusDescription": "Arrived"}
    ]}
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Config{APIKey: "tm-key", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	c.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestClient_Track_Created(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trackings/create", r.URL.Path)
		assert.Equal(t, "tm-key", r.Header.Get("Tracking-Api-Key"))

		var body createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, createRequest{TrackingNumber: "CZ1234567890123", CourierCode: "ppl"}, body)

		_, _ = io.WriteString(w, createdPayload)
	})

	resp, err := c.Track(context.Background(), "CZ1234567890123", "ppl")
	require.NoError(t, err)

	assert.Equal(t, "CZ1234567890123", resp.TrackingNumber)
	assert.Equal(t, "ppl", resp.CarrierCode)
	assert.Equal(t, domain.StatusInTransit, resp.CurrentStatus)
	require.NotNil(t, resp.Origin)
	assert.Equal(t, "CZ", *resp.Origin)
	assert.Nil(t, resp.Destination)

	require.Len(t, resp.Events, 2)
	// Destination-leg event is later, so it comes first.
	assert.Equal(t, "Arrived", resp.Events[0].DescriptionRaw)
	assert.Equal(t, domain.StatusInTransit, resp.Events[0].StatusCode)
	assert.Nil(t, resp.Events[0].Location)
	assert.Equal(t, "Departed", resp.Events[1].DescriptionRaw)
	require.NotNil(t, resp.Events[1].Location)
	assert.Equal(t, "Praha", *resp.Events[1].Location)
}

func TestClient_Track_ConflictFetchesExisting(t *testing.T) {
	var creates, gets int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			atomic.AddInt32(&creates, 1)
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"meta":{"code":4101,"message":"already exists"}}`)
		case r.Method == http.MethodGet:
			atomic.AddInt32(&gets, 1)
			assert.Equal(t, "/trackings/ceskaposta/RR123456789CZ", r.URL.Path)
			_, _ = io.WriteString(w, `{"meta":{"code":200},"data":{"delivery_status":"Delivered"}}`)
		}
	})

	resp, err := c.Track(context.Background(), "RR123456789CZ", "ceska-posta")
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&creates))
	assert.EqualValues(t, 1, atomic.LoadInt32(&gets))
	assert.Equal(t, "ceska-posta", resp.CarrierCode)
	assert.Equal(t, domain.StatusDelivered, resp.CurrentStatus)
	assert.Empty(t, resp.Events)
}

func TestClient_Track_ConflictMetaCode(t *testing.T) {
	var gets int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&gets, 1)
			_, _ = io.WriteString(w, `{"meta":{"code":200},"data":[{"delivery_status":"pickup"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"meta":{"code":4101,"message":"Tracking No. already exists."},"data":null}`)
	})

	resp, err := c.Track(context.Background(), "12345678", "gls")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&gets))
	assert.Equal(t, domain.StatusInTransit, resp.CurrentStatus)
}

func TestClient_Track_HardFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"meta":{"code":401,"message":"invalid api key"}}`)
	})

	_, err := c.Track(context.Background(), "CZ1234567890123", "ppl")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClient_Track_FetchFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Track(context.Background(), "CZ1234567890123", "ppl")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, http.StatusBadGateway, apiStatus(t, err))
}

func TestClient_Track_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html>`,
		"missing data":   `{"meta":{"code":200}}`,
		"empty array":    `{"meta":{"code":200},"data":[]}`,
		"missing status": `{"meta":{"code":200},"data":{"origin_info":{"trackinfo":[]}}}`,
		"blank status":   `{"meta":{"code":200},"data":{"delivery_status":"  "}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, payload)
			})
			_, err := c.Track(context.Background(), "CZ1234567890123", "ppl")
			assert.ErrorIs(t, err, domain.ErrMalformedProviderResponse)
		})
	}
}

func TestClient_Track_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := New(Config{BaseURL: srv.URL})

	_, err := c.Track(context.Background(), "CZ1234567890123", "ppl")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.StatusCode
}
