package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/justyntemme/liv/internal/app"
	"github.com/justyntemme/liv/internal/config"
)

const version = "0.4.0"

func main() {
	var opts app.Options
	flag.BoolVar(&opts.OneToOne, "1", false, "show images at their real size")
	flag.BoolVar(&opts.Recursive, "r", false, "add directories recursively")
	flag.StringVar(&opts.Background, "b", "", "background colour: white, black, gray, #rrggbb or r,g,b")
	flag.BoolVar(&opts.Windowed, "w", false, "start in a window instead of fullscreen")
	flag.StringVar(&opts.Sort, "s", "", "sort by date, size, pixels, width, height, name, casename or random")
	flag.BoolVar(&opts.Reverse, "R", false, "reverse the order")
	flag.StringVar(&opts.Collection, "C", "", "load a collection file")
	delay := flag.Float64("D", 0, "start a slideshow with this delay in seconds")
	memory := flag.Bool("M", false, "keep previews in memory only")
	local := flag.Bool("L", false, "store previews next to the images")
	flag.BoolVar(&opts.Verbose, "V", false, "verbose overlays")
	flag.Func("t", "tag every image named on the command line (repeatable, comma separated)", func(s string) error {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Tags = append(opts.Tags, t)
			}
		}
		return nil
	})
	showVersion := flag.Bool("v", false, "print the version and exit")
	genConfig := flag.Bool("gen-config", false, "write a default config file and exit")
	debug := flag.Bool("debug", false, "keep the console attached")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: liv [options] [file|directory|collection ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("liv", version)
		return
	}
	if *genConfig {
		path := config.ConfigPath()
		backup, err := config.GenerateConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "liv: %v\n", err)
			os.Exit(1)
		}
		if backup != "" {
			fmt.Printf("backed up %s\n", backup)
		}
		fmt.Printf("wrote %s\n", path)
		return
	}
	if *delay < 0 {
		fmt.Fprintln(os.Stderr, "liv: -D must not be negative")
		os.Exit(2)
	}
	opts.SlideDelay = time.Duration(*delay * float64(time.Second))
	switch {
	case *memory:
		opts.Thumbs = "memory"
	case *local:
		opts.Thumbs = "local"
	}
	opts.Paths = flag.Args()

	manageConsole(*debug)
	app.Main(opts)
}
