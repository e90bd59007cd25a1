package domain

import "errors"

var (
	ErrInvalidTrackingNumber     = errors.New("invalid tracking number")
	ErrShipmentNotFound          = errors.New("shipment not found")
	ErrShopNotFound              = errors.New("shop not found")
	ErrProviderUnavailable       = errors.New("tracking provider unavailable")
	ErrMalformedProviderResponse = errors.New("malformed tracking provider response")
	ErrSummaryUnavailable        = errors.New("summary unavailable")
	ErrLockNotAcquired           = errors.New("tracking lock not acquired")
	ErrRateLimited               = errors.New("rate limit exceeded")
	ErrForbidden                 = errors.New("access forbidden")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAPIKey      = errors.New("invalid api key")
)
