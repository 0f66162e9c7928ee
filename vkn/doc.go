// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkn selects a physical device and negotiates its queue
// families. It knows nothing about the graphics API itself, devices
// are reached through a Platform, which package core implements
// on top of Vulkan.
package vkn
