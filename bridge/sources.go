package bridge

import (
	"context"

	"github.com/kpaulsen/vmsbridge/dahua"
	"github.com/kpaulsen/vmsbridge/hikcentral"
	"github.com/kpaulsen/vmsbridge/uniview"
)

// HikCentralSource adapts a hikcentral client to the Source interface.
type HikCentralSource struct {
	Client *hikcentral.Client
}

// Name implements Source.
func (s HikCentralSource) Name() string { return "hikcentral" }

// Devices implements Source.
func (s HikCentralSource) Devices(ctx context.Context) ([]Device, error) {
	devices, err := s.Client.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, Device{
			Vendor: s.Name(),
			ID:     d.DeviceIndexCode,
			Name:   d.DeviceName,
			Type:   d.DeviceType,
			Online: d.Online(),
		})
	}
	return out, nil
}

// DahuaSource adapts a dahua client to the Source interface.
type DahuaSource struct {
	Client *dahua.Client
}

// Name implements Source.
func (s DahuaSource) Name() string { return "dahua" }

// Devices implements Source.
func (s DahuaSource) Devices(ctx context.Context) ([]Device, error) {
	devices, err := s.Client.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, Device{
			Vendor: s.Name(),
			ID:     d.DeviceCode,
			Name:   d.DeviceName,
			Type:   d.DeviceType,
			Online: d.Online(),
		})
	}
	return out, nil
}

// UniviewSource adapts a uniview client to the Source interface.
type UniviewSource struct {
	Client *uniview.Client
}

// Name implements Source.
func (s UniviewSource) Name() string { return "uniview" }

// Devices implements Source.
func (s UniviewSource) Devices(ctx context.Context) ([]Device, error) {
	devices, err := s.Client.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, Device{
			Vendor: s.Name(),
			ID:     d.DeviceID,
			Name:   d.DeviceName,
			Type:   d.DeviceType,
			Online: d.Online(),
		})
	}
	return out, nil
}
