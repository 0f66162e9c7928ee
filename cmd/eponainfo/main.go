// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command eponainfo prints the physical devices Vulkan reports, how
// each one measures up to the configured requirements and which one
// would be selected. It runs without a window, so presentation
// support is never required.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/core"
	"github.com/devblok/epona/vkn"
)

var (
	configFile = flag.String("config", "", "YAML configuration file")
	envFile    = flag.String("env", "", "Load environment variables from a .env file")
	asJSON     = flag.Bool("json", false, "Print the report as JSON")
)

func main() {
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configFile, envFiles...)
	if err != nil {
		logrus.WithError(err).Fatal("Loading configuration")
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Creating logger")
	}

	requirements, err := cfg.Device.Requirements()
	if err != nil {
		log.WithError(err).Fatal("Device requirements")
	}
	if requirements.RequirePresent {
		log.Debug("No surface, presentation is not required")
		requirements.RequirePresent = false
	}

	instance, err := core.NewVulkanInstance(core.NewApplicationInfo(cfg.Instance.ApplicationName), nil, cfg.Instance)
	if err != nil {
		log.WithError(err).Fatal("Creating Vulkan instance")
	}
	defer instance.Destroy()

	selector := vkn.NewSelector(instance.Platform(), nil, requirements, log)
	candidates, err := selector.Candidates()
	if err != nil {
		log.WithError(err).Error("Enumerating physical devices")
		instance.Destroy()
		os.Exit(1)
	}

	rep := newReport(selector, candidates)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(rep)
	} else {
		err = rep.WriteText(os.Stdout)
	}
	if err != nil {
		log.WithError(err).Error("Writing report")
	}
}
