package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kwv/beaconmesh/mesh"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds the parsed command line
type AppOptions struct {
	InputFile    string
	ConfigFile   string
	PoseCache    string
	OutputFile   string
	GeoJSONFile  string
	RenderFormat string
	VectorFormat string
	HttpPort     int
	Solve        bool
	Candidates   bool
	Render       bool
	MqttMode     bool
	HttpMode     bool
}

// appRunner is the surface run dispatches to; *App implements it
type appRunner interface {
	ApplyOptions(opts AppOptions)
	RunSolve() error
	RunCandidates() error
	RunRender() error
	RunGeoJSON() error
	RunService() error
}

func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("beaconmesh", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts AppOptions
	fs.StringVar(&opts.InputFile, "input", "input.txt", "Scanner report file")
	fs.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to configuration file (optional)")
	fs.StringVar(&opts.PoseCache, "pose-cache", mesh.DefaultPoseCachePath, "Path to pose cache file, empty disables caching")
	fs.BoolVar(&opts.Solve, "solve", false, "Print the unique beacon count and max scanner separation (default action)")
	fs.BoolVar(&opts.Candidates, "candidates", false, "Print overlap candidate pairs and exit")
	fs.BoolVar(&opts.Render, "render", false, "Render the beacon map and exit")
	fs.StringVar(&opts.RenderFormat, "format", "raster", "Render format: raster, vector or both")
	fs.StringVar(&opts.VectorFormat, "vector-format", "svg", "Vector output: svg or png")
	fs.StringVar(&opts.OutputFile, "output", "beacon-map.png", "Output file for --render")
	fs.StringVar(&opts.GeoJSONFile, "geojson", "", "Write beacons and scanners as GeoJSON to this path")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Align scanner reports received over MQTT")
	fs.BoolVar(&opts.HttpMode, "http", false, "Serve the latest result over HTTP")
	fs.IntVar(&opts.HttpPort, "http-port", 4040, "HTTP server port")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch opts.RenderFormat {
	case "raster", "vector", "both":
	default:
		return fmt.Errorf("invalid --format %q: want raster, vector or both", opts.RenderFormat)
	}
	switch opts.VectorFormat {
	case "svg", "png":
	default:
		return fmt.Errorf("invalid --vector-format %q: want svg or png", opts.VectorFormat)
	}

	app.ApplyOptions(opts)

	_, _ = fmt.Fprintf(out, "beaconmesh version: %s\n", Version)

	switch {
	case opts.MqttMode || opts.HttpMode:
		_, _ = fmt.Fprintln(out, "beaconmesh service starting...")
		return app.RunService()
	case opts.Candidates:
		return app.RunCandidates()
	case opts.Render:
		return app.RunRender()
	case opts.GeoJSONFile != "":
		return app.RunGeoJSON()
	default:
		return app.RunSolve()
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("beaconmesh: %v", err)
	}
}
