package device

import (
	"fmt"

	"github.com/notargets/gocca"
)

// DefaultConfigs lists the OCCA device configs tried by NewDevice when the
// caller does not supply any, preferring parallel backends
var DefaultConfigs = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "HIP", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// NewDevice opens an OCCA device, trying each JSON config in order and
// returning the first that succeeds
func NewDevice(configs ...string) (*gocca.OCCADevice, error) {
	if len(configs) == 0 {
		configs = DefaultConfigs
	}
	var lastErr error
	for _, props := range configs {
		dev, err := gocca.NewDevice(props)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: no usable backend in %d configs: %v",
		ErrDeviceFault, len(configs), lastErr)
}
