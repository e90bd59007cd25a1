package trackingmore

import (
	"bytes"
	"encoding/json"
)

// conflictMetaCode is returned in meta.code when the number is already tracked.
const conflictMetaCode = 4101

type createRequest struct {
	TrackingNumber string `json:"tracking_number"`
	CourierCode    string `json:"courier_code"`
}

type envelope struct {
	Meta meta        `json:"meta"`
	Data trackingRef `json:"data"`
}

type meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// trackingRef holds the tracking object of a response. The fetch endpoint
// may wrap it in a one-element array.
type trackingRef struct {
	*tracking
}

func (r *trackingRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		var list []tracking
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			r.tracking = &list[0]
		}
		return nil
	}
	var t tracking
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	r.tracking = &t
	return nil
}

type tracking struct {
	TrackingNumber     string   `json:"tracking_number"`
	CourierCode        string   `json:"courier_code"`
	DeliveryStatus     string   `json:"delivery_status"`
	OriginalCountry    string   `json:"original_country"`
	DestinationCountry string   `json:"destination_country"`
	OriginInfo         *legInfo `json:"origin_info"`
	DestinationInfo    *legInfo `json:"destination_info"`
}

type legInfo struct {
	TrackInfo []checkpoint `json:"trackinfo"`
}

type checkpoint struct {
	Date              string `json:"Date"`
	Details           string `json:"Details"`
	CheckpointStatus  string `json:"checkpoint_status"`
	StatusDescription string `json:"StatusDescription"`
}
