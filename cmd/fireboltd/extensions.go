package main

import (
	"context"
	"fmt"

	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/metrics"
)

// builderRegistry returns the compiled-in extension entry points. Device
// builds link their channel and method libraries here; the open build ships
// none, so only manifests declaring no channels boot successfully.
func builderRegistry() *extn.BuilderRegistry {
	return extn.NewBuilderRegistry()
}

// deviceClient returns the device-identity source for the metrics context.
// Without a linked device channel every field reports unavailable and the
// context falls back to its unset sentinels.
func deviceClient() metrics.DeviceClient {
	return unavailableDeviceClient{}
}

type unavailableDeviceClient struct{}

func (unavailableDeviceClient) MacAddress(context.Context) (string, error) {
	return "", errNoDeviceChannel
}

func (unavailableDeviceClient) SerialNumber(context.Context) (string, error) {
	return "", errNoDeviceChannel
}

func (unavailableDeviceClient) Model(context.Context) (string, error) {
	return "", errNoDeviceChannel
}

func (unavailableDeviceClient) FirmwareInfo(context.Context) (metrics.FirmwareInfo, error) {
	return metrics.FirmwareInfo{}, errNoDeviceChannel
}

var errNoDeviceChannel = fmt.Errorf("no device channel linked")
