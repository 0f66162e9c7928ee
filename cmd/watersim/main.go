// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:generate glslangValidator -V shaders/scene.vert -o shaders/scene.vert.spv
//go:generate glslangValidator -V shaders/scene.frag -o shaders/scene.frag.spv

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobuffalo/packr"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/core"
	"github.com/devblok/epona/gfx"
	"github.com/devblok/epona/watersim"
)

func init() {
	runtime.LockOSThread()
}

var frameCounter int64

var (
	configFile = flag.String("config", "", "YAML configuration file")
	assets     = flag.String("assets", "", "kar archive with the world meshes")
	cpuProfile = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile = flag.String("memprof", "", "Profile memory usage into a file")
	debug      = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("Loading configuration")
	}
	if *assets != "" {
		cfg.Assets.Archive = *assets
	}
	if *debug {
		cfg.Instance.Validation = true
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Creating logger")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Water simulation failed")
	}
}

func run(cfg config.Configuration, log *logrus.Logger) error {
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	meshes, err := loadMeshes(cfg.Assets, log)
	if err != nil {
		return err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return err
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := sdl.CreateWindow("Water simulation",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Renderer.ScreenWidth),
		int32(cfg.Renderer.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return err
	}
	defer window.Destroy()

	cfg.Instance.Extensions = append(cfg.Instance.Extensions, window.VulkanGetInstanceExtensions()...)
	instance, err := core.NewVulkanInstance(core.NewApplicationInfo(cfg.Instance.ApplicationName), sdl.VulkanGetVkGetInstanceProcAddr(), cfg.Instance)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surface, err := window.VulkanCreateSurface(instance.Inner())
	if err != nil {
		return err
	}
	instance.SetSurface(surface)

	requirements, err := cfg.Device.Requirements()
	if err != nil {
		return err
	}
	physical, err := core.SelectPhysicalDevice(instance, requirements, log)
	if err != nil {
		return err
	}

	device, err := core.NewDevice(physical, cfg.Device, log)
	if err != nil {
		return err
	}
	defer device.Destroy()

	renderer := core.NewVulkanRenderer(instance, device, shaderBox(cfg.Renderer.ShaderDirectory), cfg.Renderer, log)
	if err := renderer.Initialise(); err != nil {
		return err
	}
	defer renderer.Destroy()

	world, err := watersim.NewWorld(renderer, meshes, log)
	if err != nil {
		return err
	}
	defer world.Release()

	loop(cfg, log, renderer, world)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// shaderBox finds the compiled shaders, the default directory
// is packed into the binary
func shaderBox(dir string) packr.Box {
	if dir == "" || dir == config.Default().Renderer.ShaderDirectory {
		return packr.NewBox("./shaders")
	}
	return packr.NewBox(dir)
}

// loop polls events on the main thread while frames are drawn in
// a separate goroutine. It returns once every goroutine has stopped
// and the device is idle.
func loop(cfg config.Configuration, log logrus.FieldLogger, renderer core.Renderer, world *watersim.World) {
	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	resized := make(chan gfx.Extent2D, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println()
				return
			case <-ticker.C:
				// 200 ms * 5 = 1s
				count := atomic.SwapInt64(&frameCounter, 0)
				fmt.Printf("\r\033[2KFrames per second: %d\tCGO calls: %d", count*5, runtime.NumCgoCall())
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer renderer.Wait()

		extent := gfx.Extent2D{Width: cfg.Renderer.ScreenWidth, Height: cfg.Renderer.ScreenHeight}
		for {
			select {
			case <-ctx.Done():
				log.Info("Draw loop exited")
				return
			case extent = <-resized:
				renderer.Resize(extent.Width, extent.Height)
			case <-timeService.FpsTicker().C:
				if err := renderer.Draw(world.Camera(extent.Aspect()), world.DrawItems()); err != nil {
					log.WithError(err).Error("Draw")
					continue
				}
				if err := renderer.Present(); err != nil {
					log.WithError(err).Error("Present")
					continue
				}
				atomic.AddInt64(&frameCounter, 1)
			}
		}
	}()

EventLoop:
	for {
		select {
		case <-ctx.Done():
			break EventLoop
		case <-timeService.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						cancel()
					}
				case *sdl.QuitEvent:
					cancel()
				case *sdl.WindowEvent:
					if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
						size := gfx.Extent2D{Width: uint32(et.Data1), Height: uint32(et.Data2)}
						// keep only the latest size
						select {
						case <-resized:
						default:
						}
						resized <- size
					}
				}
			}
		}
	}

	wg.Wait()
	log.Info("Event loop exited")
}
