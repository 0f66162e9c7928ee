// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

import "github.com/pkg/errors"

// Errors returned by Selector.Select. Platform failures are
// attached as messages, errors.Cause still yields these values.
var (
	ErrFailedToRetrievePhysicalDeviceCount = errors.New("failed to retrieve physical device count")
	ErrFailedToEnumeratePhysicalDevices    = errors.New("failed to enumerate physical devices")
	ErrNoPhysicalDeviceFound               = errors.New("no physical device found")
	ErrNoSuitableDevice                    = errors.New("no suitable device")
)
