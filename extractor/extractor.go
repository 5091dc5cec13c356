package extractor

import (
	"github.com/pkg/errors"
)

// defaultHighwayTags lists the way classes extracted when no tag filter is
// configured
var defaultHighwayTags = []string{
	"motorway", "motorway_link", "trunk", "trunk_link",
	"primary", "primary_link", "secondary", "secondary_link",
	"tertiary", "tertiary_link", "unclassified", "residential",
	"living_street", "service", "road",
}

// defaultSpeedProfile holds common driving speeds per highway class (km/h)
var defaultSpeedProfile = map[string]float64{
	"motorway":       90,
	"motorway_link":  45,
	"trunk":          85,
	"trunk_link":     40,
	"primary":        65,
	"primary_link":   30,
	"secondary":      55,
	"secondary_link": 25,
	"tertiary":       40,
	"tertiary_link":  20,
	"unclassified":   25,
	"residential":    25,
	"living_street":  10,
	"service":        15,
	"road":           30,
}

// Extractor drives the full pipeline: it scans an OSM file into the
// extraction containers and prepares the binary output files
type Extractor struct {
	filename     string
	cfg          OsmConfiguration
	memoryLimit  int64
	tempDir      string
	verbose      bool
	speedProfile map[string]float64
	defaultSpeed float64
}

// NewExtractor returns an extractor for fileName with default settings
func NewExtractor(fileName string, options ...func(*Extractor)) *Extractor {
	extractor := &Extractor{
		filename:     fileName,
		cfg:          OsmConfiguration{EntityName: "highway", Tags: defaultHighwayTags},
		memoryLimit:  DefaultMemoryLimit,
		speedProfile: defaultSpeedProfile,
		defaultSpeed: 25.0,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// WithHighwayTags replaces the set of extracted way classes
func WithHighwayTags(tags []string) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.cfg.Tags = tags
	}
}

// WithMemoryLimit bounds the RAM used by a single external sort (bytes)
func WithMemoryLimit(memoryLimit int64) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.memoryLimit = memoryLimit
	}
}

// WithTempDir places the spill files of the external sorts
func WithTempDir(tempDir string) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.tempDir = tempDir
	}
}

// WithVerbose toggles progress output
func WithVerbose(verbose bool) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.verbose = verbose
	}
}

// WithSpeedProfile replaces the fallback speeds per highway class (km/h)
func WithSpeedProfile(speedProfile map[string]float64) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.speedProfile = speedProfile
	}
}

// WithDefaultSpeed sets the speed assumed for highway classes missing from
// the speed profile (km/h)
func WithDefaultSpeed(defaultSpeed float64) func(*Extractor) {
	return func(extractor *Extractor) {
		extractor.defaultSpeed = defaultSpeed
	}
}

// Run scans the input file and produces the three output files
func (e *Extractor) Run(outputFileName, restrictionsFileName, nameFileName string) error {
	containers := NewExtractionContainers(e.memoryLimit, e.tempDir)
	containers.SetVerbose(e.verbose)
	defer containers.Close()
	if err := e.readOSM(containers); err != nil {
		return errors.Wrap(err, "Can't parse OSM data")
	}
	if err := containers.PrepareData(outputFileName, restrictionsFileName, nameFileName); err != nil {
		return errors.Wrap(err, "Can't prepare road network data")
	}
	return nil
}
