package extractor

import "fmt"

// PrepareWKTLinestring creates a WKT LineString from a pair of fixed-point
// coordinates
func PrepareWKTLinestring(sourceLat, sourceLon, targetLat, targetLon int32) string {
	return fmt.Sprintf("LINESTRING(%f %f,%f %f)",
		float64(sourceLon)/coordinatePrecision, float64(sourceLat)/coordinatePrecision,
		float64(targetLon)/coordinatePrecision, float64(targetLat)/coordinatePrecision)
}

// ConvertToWKT reads a prepared main file back and returns one WKT line
// string per written edge
func ConvertToWKT(outputFileName string) ([]string, error) {
	contents, err := ReadMainFile(outputFileName)
	if err != nil {
		return nil, err
	}
	coords := make(map[uint64]ExternalMemoryNode, len(contents.Nodes))
	for _, node := range contents.Nodes {
		coords[node.NodeID] = node
	}
	lines := make([]string, 0, len(contents.Edges))
	for _, edge := range contents.Edges {
		source, okSource := coords[edge.Source]
		target, okTarget := coords[edge.Target]
		if !okSource || !okTarget {
			continue
		}
		lines = append(lines, PrepareWKTLinestring(source.Lat, source.Lon, target.Lat, target.Lon))
	}
	return lines, nil
}
