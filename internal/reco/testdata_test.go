package reco

// Shared synthetic geometry for the engine tests: three primary sensors on
// the z axis, one hit each, timed exactly at the straight light travel time
// from the lowest sensor. Only the 100 m outer pair clears the 75 m pair
// separation, so exactly one upgoing track element exists.

func lineEvent() *Event {
	ev := &Event{ID: "line"}
	positions := []Vec3{{0, 0, 0}, {0, 0, 100}, {0, 0, 50}}
	for i, pos := range positions {
		ev.AddSensor(Sensor{
			ID:       i + 1,
			StringID: i + 1,
			Group:    GroupPrimary,
			Pos:      pos,
		})
	}
	for si, pos := range positions {
		ev.AddHit(Hit{
			Sensor:     si,
			Amp:        1,
			Time:       pos.Z / SpeedOfLight,
			Dur:        100,
			Coincident: true,
		})
	}
	return ev
}

func lineParams() Params {
	return Params{
		MaxSensors:         999999,
		AllowNonCoincident: true,
		Dmin:               75,
		Dtmarg:             0,
		Dtmin:              -30,
		Dtmax:              300,
		MaxDhit:            3,
		AsType:             3,
		StringWeight:       2,
		Tangmax:            15,
		Tdistmax:           20,
		TClusterInVolume:   true,
		Jangmax:            7.5,
		Jdistmax:           30,
		JMergeInVolume:     true,
		JIterate:           true,
		MinAssocSensors:    2,
	}
}

func lineConfig() Config {
	cfg := DefaultConfig()
	cfg.Conditional = 0
	cfg.HitWeight = -1 // unweighted counts keep the arithmetic exact
	cfg.Partitions[Primary] = lineParams()
	return cfg
}

func allSensors(ev *Event) []int {
	out := make([]int, len(ev.Sensors))
	for i := range out {
		out[i] = i
	}
	return out
}

func fullPool(ev *Event) *hitPool {
	return buildPool(ev, allSensors(ev),
		func(int) int { return 0 },
		func(int) bool { return false },
		false)
}
