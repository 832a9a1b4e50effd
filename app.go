package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kwv/beaconmesh/mesh"
)

// App encapsulates the application state and dependencies
type App struct {
	Config       *mesh.Config
	StateTracker *mesh.StateTracker
	MQTTClient   *mesh.MQTTClient
	Publisher    *mesh.Publisher
	Out          io.Writer

	// CLI Flags (effectively dependencies)
	InputFile    string
	ConfigFile   string
	PoseCache    string
	OutputFile   string
	GeoJSONFile  string
	RenderFormat string
	VectorFormat string
	HttpPort     int
	MqttMode     bool
	HttpMode     bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		StateTracker: mesh.NewStateTracker(),
		Out:          os.Stdout,
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.InputFile = opts.InputFile
	a.ConfigFile = opts.ConfigFile
	a.PoseCache = opts.PoseCache
	a.OutputFile = opts.OutputFile
	a.GeoJSONFile = opts.GeoJSONFile
	a.RenderFormat = opts.RenderFormat
	a.VectorFormat = opts.VectorFormat
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
}

// loadConfig loads the config file once; a missing file means defaults
func (a *App) loadConfig() (*mesh.Config, error) {
	if a.Config != nil {
		return a.Config, nil
	}
	config, err := mesh.LoadConfigOrDefault(a.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", a.ConfigFile, err)
	}
	a.Config = config
	return config, nil
}

func (a *App) newAligner() (*mesh.Aligner, error) {
	config, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return mesh.NewAligner(config.Alignment), nil
}

// alignInput parses the input file and aligns it, going through the pose
// cache when one is configured
func (a *App) alignInput(ctx context.Context) (*mesh.Alignment, error) {
	scanners, err := mesh.LoadScanners(ctx, a.InputFile)
	if err != nil {
		return nil, err
	}
	summary := mesh.Summarize(scanners)
	log.Printf("[ALIGN] Parsed %s: %d scanners, %d beacon reports", a.InputFile, summary.Scanners, summary.Beacons)

	aligner, err := a.newAligner()
	if err != nil {
		return nil, err
	}

	if a.PoseCache == "" {
		return aligner.Align(ctx, scanners)
	}
	al, cached, err := aligner.AlignWithCache(ctx, scanners, a.PoseCache)
	if err != nil && al == nil {
		return nil, err
	}
	if err != nil {
		// the alignment is fine, only the cache write failed
		log.Printf("Warning: %v", err)
	}
	if cached {
		log.Printf("[ALIGN] Using cached poses from %s", a.PoseCache)
	}
	return al, nil
}

// RunSolve prints the two headline answers for the input file
func (a *App) RunSolve() error {
	al, err := a.alignInput(context.Background())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.Out, "Unique beacons: %d\n", al.UniqueBeacons())
	_, _ = fmt.Fprintf(a.Out, "Max scanner separation: %d\n", al.MaxSeparation())

	if a.GeoJSONFile != "" {
		return a.writeGeoJSON(al)
	}
	return nil
}

// RunCandidates prints the fingerprint-filtered scanner pairs
func (a *App) RunCandidates() error {
	scanners, err := mesh.LoadScanners(context.Background(), a.InputFile)
	if err != nil {
		return err
	}
	aligner, err := a.newAligner()
	if err != nil {
		return err
	}

	threshold := mesh.MinSharedDistances(aligner.MinOverlap)
	pairs, err := mesh.CandidatePairs(context.Background(), mesh.Fingerprints(scanners), threshold, aligner.Workers)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.Out, "Candidate pairs (threshold %d shared distances):\n", threshold)
	for _, p := range pairs {
		_, _ = fmt.Fprintf(a.Out, "  %d - %d  shared=%d\n", p.I, p.J, p.Shared)
	}
	_, _ = fmt.Fprintf(a.Out, "%d of %d pairs\n", len(pairs), len(scanners)*(len(scanners)-1)/2)
	return nil
}

// RunRender renders the aligned beacon map to OutputFile
func (a *App) RunRender() error {
	al, err := a.alignInput(context.Background())
	if err != nil {
		return err
	}
	config, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.RenderFormat == "raster" || a.RenderFormat == "both" {
		path := a.OutputFile
		if a.RenderFormat == "both" {
			path = withExt(path, ".png")
		}
		if err := mesh.NewRasterRenderer(al, config.Render).SavePNG(path); err != nil {
			return fmt.Errorf("saving raster map: %w", err)
		}
		_, _ = fmt.Fprintf(a.Out, "Saved raster map to %s\n", path)
	}

	if a.RenderFormat == "vector" || a.RenderFormat == "both" {
		// the extension always follows the vector format
		path := withExt(a.OutputFile, "."+a.VectorFormat)
		if a.RenderFormat == "both" {
			path = withExt(a.OutputFile, "-vector."+a.VectorFormat)
		}
		if err := a.saveVector(mesh.NewVectorRenderer(al, config.Render), path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(a.Out, "Saved vector map to %s\n", path)
	}
	return nil
}

func (a *App) saveVector(r *mesh.VectorRenderer, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if a.VectorFormat == "png" {
		err = r.RenderToPNG(f)
	} else {
		err = r.RenderToSVG(f)
	}
	if err != nil {
		return fmt.Errorf("rendering vector map: %w", err)
	}
	return nil
}

// withExt replaces the extension of path with suffix
func withExt(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// RunGeoJSON aligns the input and writes it as GeoJSON
func (a *App) RunGeoJSON() error {
	al, err := a.alignInput(context.Background())
	if err != nil {
		return err
	}
	return a.writeGeoJSON(al)
}

func (a *App) writeGeoJSON(al *mesh.Alignment) error {
	data, err := mesh.BeaconsGeoJSON(al).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}
	if err := os.WriteFile(a.GeoJSONFile, data, 0644); err != nil {
		return fmt.Errorf("writing GeoJSON: %w", err)
	}
	_, _ = fmt.Fprintf(a.Out, "Saved GeoJSON to %s\n", a.GeoJSONFile)
	return nil
}

// hasInput reports whether InputFile names a URL or an existing file
func (a *App) hasInput() bool {
	if mesh.IsRemoteSource(a.InputFile) {
		return true
	}
	_, err := os.Stat(a.InputFile)
	return err == nil
}

// RunService runs the MQTT and/or HTTP service until interrupted
func (a *App) RunService() error {
	_, _ = fmt.Fprintln(a.Out, "Starting beaconmesh service...")

	config, err := a.loadConfig()
	if err != nil {
		return err
	}

	aligner, err := a.newAligner()
	if err != nil {
		return err
	}
	autoAligner := mesh.NewAutoAligner(aligner, a.PoseCache, a.StateTracker)

	// Seed the state with the input so HTTP has something to serve
	if a.hasInput() {
		if scanners, err := mesh.LoadScanners(context.Background(), a.InputFile); err != nil {
			log.Printf("Warning: loading initial input %s failed: %v", a.InputFile, err)
		} else if _, _, err := autoAligner.Process(context.Background(), scanners); err != nil {
			log.Printf("Warning: initial alignment of %s failed: %v", a.InputFile, err)
		}
	}

	if a.MqttMode {
		mqttClient, err := mesh.InitMQTT(config, autoAligner.OnScanReport)
		if err != nil {
			return fmt.Errorf("initializing MQTT: %w", err)
		}
		if mqttClient == nil {
			return fmt.Errorf("MQTT broker not configured (set mqtt.broker or MQTT_BROKER)")
		}
		a.MQTTClient = mqttClient
		a.Publisher = mesh.NewPublisher(mqttClient.GetClient(), config.MQTT.PublishPrefix)
		autoAligner.SetPublisher(a.Publisher)
		_, _ = fmt.Fprintln(a.Out, "MQTT report publisher initialized")
	}

	if a.HttpMode {
		httpServer := newHTTPServer(a.StateTracker, config, a.Publisher)
		go func() {
			addr := fmt.Sprintf("0.0.0.0:%d", a.HttpPort)
			log.Printf("[HTTP] Starting server on %s", addr)
			if err := http.ListenAndServe(addr, httpServer); err != nil {
				log.Fatalf("[HTTP] Server error: %v", err)
			}
		}()
	}

	_, _ = fmt.Fprintln(a.Out, "\nService Running")
	_, _ = fmt.Fprintln(a.Out, "===============")

	if a.MqttMode {
		_, _ = fmt.Fprintln(a.Out, "\nMQTT:")
		_, _ = fmt.Fprintf(a.Out, "  Subscribed topic: %s\n", config.MQTT.InputTopic)
		_, _ = fmt.Fprintf(a.Out, "  Publishing to: %s/result, %s/scanner/{id}\n", a.Publisher.Prefix(), a.Publisher.Prefix())
	}

	if a.HttpMode {
		_, _ = fmt.Fprintf(a.Out, "\nHTTP endpoints (port %d):\n", a.HttpPort)
		_, _ = fmt.Fprintln(a.Out, "  GET /health           - Health check")
		_, _ = fmt.Fprintln(a.Out, "  GET /result.json      - Latest alignment report")
		_, _ = fmt.Fprintln(a.Out, "  GET /beacons.geojson  - Beacons and scanners as GeoJSON")
		_, _ = fmt.Fprintln(a.Out, "  GET /map.svg          - Vector beacon map")
		_, _ = fmt.Fprintln(a.Out, "  GET /map.png          - Raster beacon map")
	}

	_, _ = fmt.Fprintln(a.Out, "\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	_, _ = fmt.Fprintln(a.Out, "\nShutting down service...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	_, _ = fmt.Fprintln(a.Out, "Service stopped")
	return nil
}
