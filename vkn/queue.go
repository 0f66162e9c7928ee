// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

// Queue family classification. Every function scans families
// in order and reports positions in the list, so the result
// of an empty list is always absent.

// GraphicsQueueIndex returns the first family capable of graphics
func GraphicsQueueIndex(families []QueueFamily) QueueIndex {
	for i, f := range families {
		if f.Flags.Has(QueueGraphicsBit) {
			return SomeQueueIndex(uint32(i))
		}
	}
	return QueueIndex{}
}

// PresentQueueIndex returns the first family that can present to
// surface. A null surface yields absent without asking the
// platform, and a failed query stops the scan.
func PresentQueueIndex(querier SurfaceSupporter, device Handle, surface Handle, families []QueueFamily) QueueIndex {
	if IsNullHandle(surface) {
		return QueueIndex{}
	}
	for i := range families {
		supported, err := querier.SurfaceSupport(device, uint32(i), surface)
		if err != nil {
			return QueueIndex{}
		}
		if supported {
			return SomeQueueIndex(uint32(i))
		}
	}
	return QueueIndex{}
}

// DedicatedComputeQueueIndex returns the first family that does
// compute and neither graphics nor transfer
func DedicatedComputeQueueIndex(families []QueueFamily) QueueIndex {
	return dedicatedQueueIndex(families, QueueComputeBit, QueueTransferBit)
}

// DedicatedTransferQueueIndex returns the first family that does
// transfer and neither graphics nor compute
func DedicatedTransferQueueIndex(families []QueueFamily) QueueIndex {
	return dedicatedQueueIndex(families, QueueTransferBit, QueueComputeBit)
}

// SeparatedComputeQueueIndex returns a compute family without
// graphics. A family that also lacks transfer wins wherever it is,
// otherwise the first compute family without graphics is used.
func SeparatedComputeQueueIndex(families []QueueFamily) QueueIndex {
	return separatedQueueIndex(families, QueueComputeBit, QueueTransferBit)
}

// SeparatedTransferQueueIndex returns a transfer family without
// graphics. A family that also lacks compute wins wherever it is,
// otherwise the first transfer family without graphics is used.
func SeparatedTransferQueueIndex(families []QueueFamily) QueueIndex {
	return separatedQueueIndex(families, QueueTransferBit, QueueComputeBit)
}

func dedicatedQueueIndex(families []QueueFamily, want, other QueueFlags) QueueIndex {
	for i, f := range families {
		if f.Flags.Has(want) && !f.Flags.Has(QueueGraphicsBit) && !f.Flags.Has(other) {
			return SomeQueueIndex(uint32(i))
		}
	}
	return QueueIndex{}
}

func separatedQueueIndex(families []QueueFamily, want, other QueueFlags) QueueIndex {
	var fallback QueueIndex
	for i, f := range families {
		if !f.Flags.Has(want) || f.Flags.Has(QueueGraphicsBit) {
			continue
		}
		if !f.Flags.Has(other) {
			return SomeQueueIndex(uint32(i))
		}
		if !fallback.Valid {
			fallback = SomeQueueIndex(uint32(i))
		}
	}
	return fallback
}
