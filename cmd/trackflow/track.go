package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/infrastructure/provider"
)

type trackOutput struct {
	TrackingNumber string                 `json:"tracking_number"`
	CarrierCode    string                 `json:"carrier_code"`
	CarrierName    string                 `json:"carrier_name"`
	CurrentStatus  domain.ShipmentStatus  `json:"current_status"`
	Origin         *string                `json:"origin,omitempty"`
	Destination    *string                `json:"destination,omitempty"`
	Events         []domain.TrackingEvent `json:"events"`
}

func newTrackCmd() *cobra.Command {
	var carrierCode string

	cmd := &cobra.Command{
		Use:   "track <tracking-number>",
		Short: "Look a tracking number up with the provider without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			table, err := loadCarriers(cfg.CarriersFile)
			if err != nil {
				return err
			}
			p, err := provider.NewRegistry().New(cfg.Provider)
			if err != nil {
				return err
			}

			number := carrier.Normalize(args[0])
			if number == "" {
				return domain.ErrInvalidTrackingNumber
			}
			code := strings.ToLower(strings.TrimSpace(carrierCode))
			if code == "" {
				var ok bool
				if code, ok = table.Detect(number); !ok {
					code = carrier.Auto
				}
			}

			started := time.Now()
			resp, err := p.Track(cmd.Context(), number, code)
			if err != nil {
				return err
			}
			log.Debug().
				Str("tracking_number", number).
				Str("carrier", resp.CarrierCode).
				Dur("elapsed", time.Since(started)).
				Msg("provider lookup done")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(trackOutput{
				TrackingNumber: resp.TrackingNumber,
				CarrierCode:    resp.CarrierCode,
				CarrierName:    table.Name(resp.CarrierCode),
				CurrentStatus:  resp.CurrentStatus,
				Origin:         resp.Origin,
				Destination:    resp.Destination,
				Events:         resp.Events,
			})
		},
	}
	cmd.Flags().StringVar(&carrierCode, "carrier", "", "carrier code, detected when empty")
	return cmd
}
