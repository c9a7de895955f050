package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"

	"github.com/alsoasnerd/nes/nes"
	"github.com/alsoasnerd/nes/ui"
)

var (
	path       = flag.String("path", "./rom/sample1.nes", "path to NES ROM file")
	width      = flag.Int("width", 256*4, "window width")
	height     = flag.Int("height", 240*4, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode")
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	buf, err := os.ReadFile(*path)
	if err != nil {
		glog.Fatalln("Failed to read: " + *path)
	}
	console, err := nes.NewConsole(buf)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	if *debug {
		dc := nes.NewDebugConsole(console)
		for {
			if _, err := dc.Step(); err != nil {
				glog.Fatalln(err)
			}
		}
	}
	if err := ui.Start(console, *width, *height); err != nil {
		glog.Fatalln(err)
	}
}
