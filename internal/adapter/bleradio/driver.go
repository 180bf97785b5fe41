package bleradio

import (
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"
)

// driver is the subset of the host Bluetooth stack the link needs.
type driver interface {
	Enable() error
	Advertise(companyID uint16, data []byte, interval time.Duration) (stop func() error, err error)
	Scan(onData func(companyID uint16, data []byte)) error
	StopScan() error
}

// bluez drives a BlueZ adapter through tinygo.org/x/bluetooth.
type bluez struct {
	adapter *bluetooth.Adapter
}

func newBluez(id string) *bluez {
	return &bluez{adapter: bluetooth.NewAdapter(id)}
}

func (b *bluez) Enable() error {
	return b.adapter.Enable()
}

func (b *bluez) Advertise(companyID uint16, data []byte, interval time.Duration) (func() error, error) {
	adv := b.adapter.DefaultAdvertisement()
	err := adv.Configure(bluetooth.AdvertisementOptions{
		AdvertisementType: bluetooth.AdvertisingTypeNonConnInd,
		Interval:          bluetooth.NewDuration(interval),
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: companyID, Data: data},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("configure advertisement: %w", err)
	}
	if err := adv.Start(); err != nil {
		_ = adv.Stop()
		return nil, fmt.Errorf("start advertisement: %w", err)
	}
	return adv.Stop, nil
}

func (b *bluez) Scan(onData func(companyID uint16, data []byte)) error {
	return b.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		for _, md := range r.ManufacturerData() {
			onData(md.CompanyID, md.Data)
		}
	})
}

func (b *bluez) StopScan() error {
	return b.adapter.StopScan()
}
