package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/drewet/osrm-backend/extractor"
)

var (
	tagStr = flag.String("tags", "motorway,motorway_link,trunk,trunk_link,primary,primary_link,secondary,secondary_link,tertiary,tertiary_link,unclassified,residential,living_street,service,road", "Set of needed highway tags (separated by commas)")

	osmFileName = flag.String("file", "my_map.osm.pbf", "Filename of *.osm.pbf or *.osm file")
	out         = flag.String("out", "my_map.osrm", "Base name of produced files. E.g.: if base name is 'map.osrm' then 3 files will be produced: 'map.osrm' (nodes and edges), 'map.osrm.restrictions', 'map.osrm.names'")
	memoryMB    = flag.Int64("memory-mb", 1024, "RAM budget for external sorts (megabytes)")
	tmpDir      = flag.String("tmp", "", "Directory for spill files (defaults to the system temp directory)")
	verbose     = flag.Bool("verbose", true, "Print progress")
	geojsonOut  = flag.String("geojson", "", "Optional filename for a GeoJSON debug dump of the prepared graph")
)

func main() {
	flag.Parse()

	tags := strings.Split(*tagStr, ",")
	e := extractor.NewExtractor(*osmFileName,
		extractor.WithHighwayTags(tags),
		extractor.WithMemoryLimit(*memoryMB*(1<<20)),
		extractor.WithTempDir(*tmpDir),
		extractor.WithVerbose(*verbose),
	)

	restrictionsFileName := *out + ".restrictions"
	nameFileName := *out + ".names"
	if err := e.Run(*out, restrictionsFileName, nameFileName); err != nil {
		fmt.Println(err)
		return
	}

	if *geojsonOut != "" {
		if err := extractor.WriteGeoJSONFile(*out, *geojsonOut); err != nil {
			fmt.Println(err)
			return
		}
	}
}
