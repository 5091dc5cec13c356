package extractor

import (
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

// ConvertToGeoJSON reads a prepared main file back and returns its nodes as
// points and its edges as line strings, for debugging the extraction result
func ConvertToGeoJSON(outputFileName string) (*geojson.FeatureCollection, error) {
	contents, err := ReadMainFile(outputFileName)
	if err != nil {
		return nil, err
	}

	coords := make(map[uint64][]float64, len(contents.Nodes))
	fc := geojson.NewFeatureCollection()
	for _, node := range contents.Nodes {
		point := []float64{float64(node.Lon) / coordinatePrecision, float64(node.Lat) / coordinatePrecision}
		coords[node.NodeID] = point
		feature := geojson.NewPointFeature(point)
		feature.SetProperty("id", node.NodeID)
		feature.SetProperty("barrier", node.Barrier != 0)
		feature.SetProperty("traffic_light", node.TrafficLight != 0)
		fc.AddFeature(feature)
	}
	for _, edge := range contents.Edges {
		source, okSource := coords[edge.Source]
		target, okTarget := coords[edge.Target]
		if !okSource || !okTarget {
			continue
		}
		feature := geojson.NewLineStringFeature([][]float64{source, target})
		feature.SetProperty("weight", edge.Weight)
		feature.SetProperty("name_id", edge.NameID)
		feature.SetProperty("forward", edge.Forward != 0)
		feature.SetProperty("backward", edge.Backward != 0)
		feature.SetProperty("length_m", geo.DistanceHaversine(orb.Point{source[0], source[1]}, orb.Point{target[0], target[1]}))
		fc.AddFeature(feature)
	}
	return fc, nil
}

// WriteGeoJSONFile renders a prepared main file into path
func WriteGeoJSONFile(outputFileName, path string) error {
	fc, err := ConvertToGeoJSON(outputFileName)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal feature collection")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "Can't write GeoJSON file")
	}
	return nil
}
