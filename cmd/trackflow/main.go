// Command trackflow runs the parcel tracking service and its helper commands.
//
//	@title						TrackFlow API
//	@version					1.0
//	@description				Parcel tracking aggregator: carrier detection, provider lookups and stored shipment history.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
