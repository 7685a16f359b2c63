// Package bridge aggregates device inventory across the configured vendor
// platforms into one normalized list.
package bridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Device is the vendor-neutral inventory shape. Only the fields every
// platform can supply are unified; vendor data models stay in their own
// packages.
type Device struct {
	Vendor string
	ID     string
	Name   string
	Type   string
	Online bool
}

// Source lists devices for one vendor platform.
type Source interface {
	// Name identifies the vendor in logs and normalized devices.
	Name() string
	// Devices returns the platform's full device inventory.
	Devices(ctx context.Context) ([]Device, error)
}

// Inventory fans device listing out across vendor sources.
type Inventory struct {
	sources []Source
	logger  zerolog.Logger
}

// NewInventory builds an inventory over the given sources.
func NewInventory(logger zerolog.Logger, sources ...Source) *Inventory {
	return &Inventory{sources: sources, logger: logger}
}

// Collect queries every source concurrently and merges the results. An
// error from any source cancels the remaining queries and is surfaced.
func (inv *Inventory) Collect(ctx context.Context) ([]Device, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var all []Device

	for _, src := range inv.sources {
		src := src
		g.Go(func() error {
			devices, err := src.Devices(ctx)
			if err != nil {
				inv.logger.Error().Err(err).Str("vendor", src.Name()).Msg("Device listing failed")
				return err
			}

			inv.logger.Debug().
				Str("vendor", src.Name()).
				Int("count", len(devices)).
				Msg("Collected devices")

			mu.Lock()
			all = append(all, devices...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
