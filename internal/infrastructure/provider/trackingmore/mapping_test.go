package trackingmore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

func TestMapStatus(t *testing.T) {
	cases := map[string]domain.ShipmentStatus{
		"pending":       domain.StatusPending,
		"notfound":      domain.StatusPending,
		"transit":       domain.StatusInTransit,
		"PICKUP":        domain.StatusInTransit,
		"Delivered":     domain.StatusDelivered,
		"expired":       domain.StatusExpired,
		"undelivered":   domain.StatusFailedAttempt,
		"exception":     domain.StatusException,
		"InfoReceived":  domain.StatusInfoReceived,
		"":              domain.StatusUnknown,
		"lost_in_space": domain.StatusUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapStatus(in), "input %q", in)
	}
}

func TestMapStatus_IsTotal(t *testing.T) {
	for _, in := range []string{"x", "TRANSIT ", "é", "delivered\n", "123"} {
		assert.True(t, MapStatus(in).IsValid(), "input %q", in)
	}
}

func TestCourierCode(t *testing.T) {
	assert.Equal(t, "ceskaposta", CourierCode("ceska-posta"))
	assert.Equal(t, "ppl", CourierCode("ppl"))
	assert.Equal(t, "auto", CourierCode("auto"))
	assert.Equal(t, "some-new-courier", CourierCode("some-new-courier"))
}

func TestNormalize_SortsNewestFirstAcrossLegs(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	t1 := "2024-05-01 08:00:00"
	t2 := "2024-05-01 09:00:00"
	t3 := "2024-05-01 10:00:00"
	tr := &tracking{
		DeliveryStatus: "transit",
		OriginInfo: &legInfo{TrackInfo: []checkpoint{
			{Date: t1, StatusDescription: "t1"},
			{Date: t3, StatusDescription: "t3"},
		}},
		DestinationInfo: &legInfo{TrackInfo: []checkpoint{
			{Date: t2, StatusDescription: "t2"},
			{StatusDescription: "undated"},
		}},
	}

	resp, err := normalize(tr, "CZ1234567890123", "ppl", now)
	require.NoError(t, err)

	var got []string
	for _, e := range resp.Events {
		got = append(got, e.DescriptionRaw)
	}
	assert.Equal(t, []string{"undated", "t3", "t2", "t1"}, got)
	assert.Equal(t, now, resp.Events[0].Timestamp)
	for i := 1; i < len(resp.Events); i++ {
		assert.False(t, resp.Events[i].Timestamp.After(resp.Events[i-1].Timestamp))
	}
}

func TestNormalize_EventDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tr := &tracking{
		DeliveryStatus: "transit",
		OriginInfo: &legInfo{TrackInfo: []checkpoint{
			{Date: "garbage", CheckpointStatus: "", StatusDescription: "a"},
			{Date: "2024-05-01T10:00:00+02:00", CheckpointStatus: "weird", StatusDescription: "b"},
		}},
	}

	resp, err := normalize(tr, "X", "auto", now)
	require.NoError(t, err)
	require.Len(t, resp.Events, 2)

	assert.Equal(t, now, resp.Events[0].Timestamp)
	assert.Equal(t, domain.StatusInTransit, resp.Events[0].StatusCode)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), resp.Events[1].Timestamp)
	assert.Equal(t, domain.StatusUnknown, resp.Events[1].StatusCode)
}
