// Command trackwalk runs the direct-walk trajectory reconstruction over a
// stream of JSON events and prints (and optionally persists) the resulting
// tracks.
//
// Events are read as a stream of JSON objects (one object or an NDJSON
// stream) from the input file or stdin:
//
//	{
//	  "id": "run12-evt345",
//	  "sensors": [{"id":1,"string":3,"group":"primary","pos":[12.4,-8.0,-220.5]}],
//	  "hits": [{"sensor":0,"amp":1.8,"time":412.5,"dur":180,"coincident":true}]
//	}
//
// The "sensor" field of a hit is the index of its sensor in the "sensors"
// array.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/polar-array/trackwalk/internal/config"
	"github.com/polar-array/trackwalk/internal/monitoring"
	"github.com/polar-array/trackwalk/internal/reco"
	"github.com/polar-array/trackwalk/internal/recodb"
	"github.com/polar-array/trackwalk/internal/version"
)

type sensorJSON struct {
	ID       int        `json:"id"`
	StringID int        `json:"string"`
	Group    string     `json:"group"` // "coarse", "primary" or "lowenergy"
	Zone     string     `json:"zone,omitempty"`
	Pos      [3]float64 `json:"pos"`
	Dead     bool       `json:"dead,omitempty"`
}

type hitJSON struct {
	Sensor     int     `json:"sensor"`
	Amp        float64 `json:"amp"`
	Time       float64 `json:"time"`
	Dur        float64 `json:"dur"`
	Coincident bool    `json:"coincident"`
	Dead       bool    `json:"dead,omitempty"`
}

type eventJSON struct {
	ID      string       `json:"id"`
	Sensors []sensorJSON `json:"sensors"`
	Hits    []hitJSON    `json:"hits"`
}

func parseGroup(s string) (reco.Group, error) {
	switch s {
	case "coarse":
		return reco.GroupCoarse, nil
	case "primary", "":
		return reco.GroupPrimary, nil
	case "lowenergy":
		return reco.GroupLowEnergy, nil
	}
	return 0, fmt.Errorf("unknown sensor group %q", s)
}

func parseZone(s string) (reco.Zone, error) {
	switch s {
	case "":
		return reco.ZoneAuto, nil
	case "upper":
		return reco.ZoneUpper, nil
	case "dust":
		return reco.ZoneDust, nil
	case "lower":
		return reco.ZoneLower, nil
	}
	return 0, fmt.Errorf("unknown sensor zone %q", s)
}

// buildEvent converts the JSON form into the engine's event model.
func buildEvent(ej *eventJSON) (*reco.Event, error) {
	ev := &reco.Event{ID: ej.ID}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	for i, sj := range ej.Sensors {
		g, err := parseGroup(sj.Group)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		z, err := parseZone(sj.Zone)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		ev.AddSensor(reco.Sensor{
			ID:       sj.ID,
			StringID: sj.StringID,
			Group:    g,
			Zone:     z,
			Pos:      reco.Vec3{X: sj.Pos[0], Y: sj.Pos[1], Z: sj.Pos[2]},
			AmpDead:  sj.Dead,
			TimeDead: sj.Dead,
			DurDead:  sj.Dead,
		})
	}
	for i, hj := range ej.Hits {
		if hj.Sensor < 0 || hj.Sensor >= len(ev.Sensors) {
			return nil, fmt.Errorf("hit %d: sensor index %d out of range", i, hj.Sensor)
		}
		ev.AddHit(reco.Hit{
			Sensor:     hj.Sensor,
			Amp:        hj.Amp,
			Time:       hj.Time,
			Dur:        hj.Dur,
			Coincident: hj.Coincident,
			AmpDead:    hj.Dead,
			TimeDead:   hj.Dead,
			DurDead:    hj.Dead,
		})
	}
	return ev, nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "tuning config JSON (empty: built-in defaults)")
		eventsPath  = flag.String("events", "-", "event JSON stream ('-' for stdin)")
		dbPath      = flag.String("db", "", "sqlite track database (empty: don't persist)")
		quiet       = flag.Bool("quiet", false, "suppress per-event diagnostics")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackwalk %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *quiet {
		monitoring.SetLogger(nil)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	engine, err := reco.NewEngine(tuning.EngineConfig())
	if err != nil {
		log.Fatalf("engine setup: %v", err)
	}

	var store *recodb.Store
	if *dbPath != "" {
		store, err = recodb.Open(*dbPath)
		if err != nil {
			log.Fatalf("open track db: %v", err)
		}
		defer store.Close()
	}

	in := os.Stdin
	if *eventsPath != "-" {
		f, err := os.Open(*eventsPath)
		if err != nil {
			log.Fatalf("open events: %v", err)
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	nevents, ntracks := 0, 0
	for {
		var ej eventJSON
		if err := dec.Decode(&ej); err == io.EOF {
			break
		} else if err != nil {
			log.Fatalf("decode event %d: %v", nevents+1, err)
		}

		ev, err := buildEvent(&ej)
		if err != nil {
			log.Fatalf("event %d: %v", nevents+1, err)
		}
		nevents++

		tracks := engine.Reconstruct(ev)
		ntracks += len(tracks)
		for _, t := range tracks {
			flip := ""
			if t.Flipped {
				flip = " (flipped)"
			}
			fmt.Printf("%s %s: dir=(%.4f,%.4f,%.4f) ref=(%.1f,%.1f,%.1f) t0=%.1f rank=%.3f hits=%d%s\n",
				ev.ID, t.Partition, t.Dir.X, t.Dir.Y, t.Dir.Z,
				t.Ref.X, t.Ref.Y, t.Ref.Z, t.T0, t.Q.Rank, len(t.Hits), flip)
		}

		if store != nil {
			if _, err := store.InsertEventTracks(ev.ID, tracks); err != nil {
				log.Fatalf("store tracks for %s: %v", ev.ID, err)
			}
		}
	}

	fmt.Printf("%d events, %d tracks\n", nevents, ntracks)
}
