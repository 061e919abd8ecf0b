// hovercalc computes a hover inspection point for four plane corners.
//
// Usage:
//
//	hovercalc -corners '[[52.00001,13.00002,45.3],[52.00002,13.0005,45.1],[52.0003,13.00055,45.4],[52.00029,13.00007,45.2]]'
//	echo '[[...],[...],[...],[...]]' | hovercalc -back 12 -up 3 -kmz output
//	hovercalc -images a.jpg,b.jpg -kmz output
//
// Prints {"target":[lat,lon,alt]} as JSON. With -kmz the target, or the image
// positions with -images, are also written as a DJI WPMZ mission archive.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/config"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	dommission "github.com/kailas-cloud/hoverpoint/internal/domain/mission"
	logpkg "github.com/kailas-cloud/hoverpoint/internal/logger"
	"github.com/kailas-cloud/hoverpoint/internal/transport/exif"
	missionuc "github.com/kailas-cloud/hoverpoint/internal/usecase/mission"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
	"github.com/kailas-cloud/hoverpoint/internal/version"
)

var errUsage = errors.New("usage")

type options struct {
	corners   string
	back      float64
	up        float64
	ellipsoid string
	kmzDir    string
	images    string
	author    string
	speed     float64
	verbose   bool
	version   bool
}

type output struct {
	Target    *[3]float64 `json:"target,omitempty"`
	Waypoints int         `json:"waypoints,omitempty"`
	KMZ       string      `json:"kmz,omitempty"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		cancel()
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "hovercalc:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("hovercalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.corners, "corners", "", `JSON array of four [lat,lon,alt] triples ("" or "-" reads stdin)`)
	fs.Float64Var(&o.back, "back", target.DefaultBackDistance, "retreat from the plane along its normal, metres")
	fs.Float64Var(&o.up, "up", target.DefaultUpDistance, "vertical rise after the retreat, metres")
	fs.StringVar(&o.ellipsoid, "ellipsoid", geo.WGS84().Name, "reference ellipsoid (WGS84, GRS80)")
	fs.StringVar(&o.kmzDir, "kmz", "", "write a mission archive into this directory")
	fs.StringVar(&o.images, "images", "", "comma-separated JPEG files whose GPS positions become waypoints")
	fs.StringVar(&o.author, "author", config.DefaultAuthor, "mission author")
	fs.Float64Var(&o.speed, "speed", config.DefaultSpeed, "mission speed, m/s")
	fs.BoolVar(&o.verbose, "v", false, "debug logging to stderr")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return options{}, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		_, err := fmt.Fprintln(stdout, "hovercalc", version.String())
		return err
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = logpkg.NewLogger("local", "debug"); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	ellipsoid, err := geo.EllipsoidByName(o.ellipsoid)
	if err != nil {
		return err
	}
	solver := target.New(geo.NewTransformer(ellipsoid), target.Config{BackDistance: o.back, UpDistance: o.up}, logger)

	ref, err := dommission.ParseTakeoffRef(config.DefaultTakeoffRefPoint)
	if err != nil {
		return err
	}
	// Image missions are always written, into the default directory unless -kmz says otherwise.
	if o.images != "" && o.kmzDir == "" {
		o.kmzDir = config.DefaultOutputDir
	}
	missions := missionuc.New(missionuc.NewBuilder(logger), solver, missionuc.Defaults{
		Author:     o.author,
		TakeoffRef: ref,
		Speed:      o.speed,
		OutputDir:  o.kmzDir,
		KMZName:    config.DefaultKMZName,
	}, logger)

	var out output
	if o.images != "" {
		out, err = fromImages(ctx, missions, strings.Split(o.images, ","), logger)
	} else {
		out, err = fromCorners(ctx, solver, missions, o, stdin)
	}
	if err != nil {
		return err
	}

	return json.NewEncoder(stdout).Encode(out)
}

func fromCorners(
	ctx context.Context,
	solver *target.Service,
	missions *missionuc.Service,
	o options,
	stdin io.Reader,
) (output, error) {
	raw := []byte(o.corners)
	if o.corners == "" || o.corners == "-" {
		var err error
		if raw, err = io.ReadAll(stdin); err != nil {
			return output{}, fmt.Errorf("read corners: %w", err)
		}
	}

	var triples [][]float64
	if err := json.Unmarshal(raw, &triples); err != nil {
		return output{}, fmt.Errorf("parse corners: %w", err)
	}
	corners, err := target.CornersFromTriples(triples)
	if err != nil {
		return output{}, err
	}

	p, err := solver.ComputeTarget(ctx, corners)
	if err != nil {
		return output{}, err
	}
	t := p.Triple()
	out := output{Target: &t}

	if o.kmzDir != "" {
		path, err := missions.Export(ctx, missionuc.Request{
			Waypoints: []dommission.Waypoint{dommission.FromTarget(p, 0)},
		})
		if err != nil {
			return output{}, err
		}
		out.KMZ = path
	}
	return out, nil
}

func fromImages(ctx context.Context, missions *missionuc.Service, paths []string, logger *zap.Logger) (output, error) {
	start := time.Now()
	waypoints := make([]dommission.Waypoint, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		p, err := exif.LocateFile(path)
		if err != nil {
			return output{}, err
		}
		logger.Debug("Image located",
			zap.String("path", path),
			zap.String("dms", geo.FormatLonLatDMS(p.Lon, p.Lat)),
			zap.Float64("alt", p.Alt),
		)
		waypoints = append(waypoints, dommission.NewWaypoint(p.Lon, p.Lat, p.Alt))
	}

	path, err := missions.Export(ctx, missionuc.Request{Waypoints: waypoints})
	if err != nil {
		return output{}, err
	}
	logger.Debug("Mission written", zap.String("path", path), zap.Duration("took", time.Since(start)))
	return output{Waypoints: len(waypoints), KMZ: path}, nil
}
