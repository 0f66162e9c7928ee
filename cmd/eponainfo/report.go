// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/devblok/epona/vkn"
)

type deviceReport struct {
	vkn.Description
	Verdict string `json:"verdict"`
	Reason  string `json:"reason"`
}

type selection struct {
	Device   string  `json:"device"`
	Graphics *uint32 `json:"graphics"`
	Present  *uint32 `json:"present"`
	Compute  *uint32 `json:"compute"`
	Transfer *uint32 `json:"transfer"`
}

type report struct {
	Devices   []deviceReport `json:"devices"`
	Selection *selection     `json:"selection,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func newReport(s *vkn.Selector, candidates []vkn.Description) report {
	var rep report
	for _, desc := range candidates {
		verdict, reason := s.Evaluate(desc)
		rep.Devices = append(rep.Devices, deviceReport{
			Description: desc,
			Verdict:     verdict.String(),
			Reason:      reason,
		})
	}

	chosen, err := s.Choose(candidates)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}

	// no surface, so no present family
	physical := vkn.NewPhysicalDevice(nil, nil, chosen)
	rep.Selection = &selection{
		Device:   chosen.Properties.Name,
		Graphics: optional(physical.Graphics),
		Present:  optional(physical.Present),
		Compute:  optional(physical.Compute),
		Transfer: optional(physical.Transfer),
	}
	return rep
}

func optional(q vkn.QueueIndex) *uint32 {
	if i, ok := q.Get(); ok {
		return &i
	}
	return nil
}

func (r report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, d := range r.Devices {
		p := d.Properties
		fmt.Fprintf(tw, "Device %d:\t%s\n", i, p.Name)
		fmt.Fprintf(tw, "  Type:\t%s\n", p.Type)
		fmt.Fprintf(tw, "  Vendor/Device:\t%#04x/%#04x\n", p.VendorID, p.DeviceID)
		fmt.Fprintf(tw, "  API version:\t%s\n", apiVersion(p.APIVersion))
		fmt.Fprintf(tw, "  Device local memory:\t%d MiB\n", d.MemoryProperties.DeviceLocalSize()>>20)
		for _, f := range d.QueueFamilies {
			fmt.Fprintf(tw, "  Queue family %d:\t%s x%d\n", f.Index, f.Flags, f.QueueCount)
		}
		fmt.Fprintf(tw, "  Extensions:\t%d\n", len(d.Extensions))
		verdict := d.Verdict
		if d.Reason != "" {
			verdict += " (" + d.Reason + ")"
		}
		fmt.Fprintf(tw, "  Verdict:\t%s\n", verdict)
	}

	if r.Selection != nil {
		s := r.Selection
		fmt.Fprintf(tw, "Selected:\t%s\n", s.Device)
		fmt.Fprintf(tw, "  Queues:\t%s\n", strings.Join([]string{
			"graphics " + index(s.Graphics),
			"present " + index(s.Present),
			"compute " + index(s.Compute),
			"transfer " + index(s.Transfer),
		}, ", "))
	} else {
		fmt.Fprintf(tw, "Selected:\tnone (%s)\n", r.Error)
	}
	return tw.Flush()
}

func index(i *uint32) string {
	if i == nil {
		return "none"
	}
	return fmt.Sprint(*i)
}

func apiVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
