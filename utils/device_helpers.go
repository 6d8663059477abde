package utils

import (
	"fmt"

	"github.com/LideDing/rocPRIM/device"
	"github.com/notargets/gocca"
)

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	dev, err := device.NewDevice()
	if err != nil {
		panic(fmt.Sprintf("Failed to create any Device: %v", err))
	}
	fmt.Printf("Created %s Device\n", dev.Mode())
	return dev
}
