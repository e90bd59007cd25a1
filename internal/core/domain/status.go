package domain

// ShipmentStatus is the internal lifecycle taxonomy. Provider vocabularies
// are always translated into one of these values.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusInfoReceived   ShipmentStatus = "info_received"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusFailedAttempt  ShipmentStatus = "failed_attempt"
	StatusException      ShipmentStatus = "exception"
	StatusExpired        ShipmentStatus = "expired"
	StatusUnknown        ShipmentStatus = "unknown"
)

// AllStatuses lists the taxonomy in lifecycle order.
var AllStatuses = []ShipmentStatus{
	StatusPending,
	StatusInfoReceived,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusFailedAttempt,
	StatusException,
	StatusExpired,
	StatusUnknown,
}

// IsValid reports whether s belongs to the taxonomy.
func (s ShipmentStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further provider updates are expected.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusExpired
}

// TerminalStatuses lists the statuses for which IsTerminal holds.
func TerminalStatuses() []ShipmentStatus {
	var out []ShipmentStatus
	for _, st := range AllStatuses {
		if st.IsTerminal() {
			out = append(out, st)
		}
	}
	return out
}
