package extractor

import (
	"math"
	"testing"
)

func appendTestNode(t *testing.T, c *ExtractionContainers, id uint64, lat, lon int32) {
	t.Helper()
	if err := c.AppendNode(ExternalMemoryNode{NodeID: id, Lat: lat, Lon: lon}); err != nil {
		t.Fatalf("Can't append node: %v", err)
	}
	if err := c.AppendUsedNodeID(id); err != nil {
		t.Fatalf("Can't append used node ID: %v", err)
	}
}

func appendTestEdge(t *testing.T, c *ExtractionContainers, source, target uint64, weight WeightData) {
	t.Helper()
	err := c.AppendEdge(InternalExtractorEdge{
		Result: NodeBasedEdge{
			Source:     source,
			Target:     target,
			Forward:    1,
			Backward:   1,
			TravelMode: TravelModeDriving,
		},
		SourceLat:  math.MinInt32,
		SourceLon:  math.MinInt32,
		WeightData: weight,
	})
	if err != nil {
		t.Fatalf("Can't append edge: %v", err)
	}
}

func prepareEdgesForTest(t *testing.T, c *ExtractionContainers) []InternalExtractorEdge {
	t.Helper()
	if err := c.prepareNodes(); err != nil {
		t.Fatalf("Can't prepare nodes: %v", err)
	}
	if err := c.prepareEdges(); err != nil {
		t.Fatalf("Can't prepare edges: %v", err)
	}
	edges := []InternalExtractorEdge{}
	err := c.allEdges.scan(func(record []byte) error {
		edges = append(edges, decodeInternalExtractorEdge(record))
		return nil
	})
	if err != nil {
		t.Fatalf("Can't scan edges: %v", err)
	}
	return edges
}

func TestEdgeWeightFromSpeed(t *testing.T) {
	containers := newTestContainers(t)
	// 1000 micro-degrees of latitude at 36 km/h: 111.226 m at 10 m/s gives
	// 111 deciseconds
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 1000, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 36.0})

	edges := prepareEdgesForTest(t, containers)
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, but got %d", len(edges))
	}
	if edges[0].Result.Weight != 111 {
		t.Errorf("Edge weight should be 111, but got %d", edges[0].Result.Weight)
	}
}

func TestEdgeWeightFromDuration(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 1000, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_EDGE_DURATION, Value: 5.0})

	edges := prepareEdgesForTest(t, containers)
	if edges[0].Result.Weight != 50 {
		t.Errorf("Edge weight should be 50 deciseconds regardless of geometry, but got %d", edges[0].Result.Weight)
	}
}

func TestEdgeWeightNeverBelowOne(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 0, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 100.0})

	edges := prepareEdgesForTest(t, containers)
	if edges[0].Result.Weight != 1 {
		t.Errorf("Zero-length edge should get the minimum weight 1, but got %d", edges[0].Result.Weight)
	}
}

func TestEdgeSourceCoordinateAttached(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 52100000, 11600000)
	appendTestNode(t, containers, 2, 52101000, 11601000)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 50.0})

	edges := prepareEdgesForTest(t, containers)
	if edges[0].SourceLat != 52100000 || edges[0].SourceLon != 11600000 {
		t.Errorf("Source coordinate should be (52100000, 11600000), but got (%d, %d)", edges[0].SourceLat, edges[0].SourceLon)
	}
}

func TestEdgesSharingSourceAllGetCoordinates(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 52100000, 11600000)
	appendTestNode(t, containers, 2, 52101000, 11601000)
	appendTestNode(t, containers, 3, 52102000, 11602000)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 50.0})
	appendTestEdge(t, containers, 1, 3, WeightData{Type: WEIGHT_SPEED, Value: 50.0})

	edges := prepareEdgesForTest(t, containers)
	for i, edge := range edges {
		if edge.SourceLat != 52100000 || edge.SourceLon != 11600000 {
			t.Errorf("Edge %d should carry the shared source coordinate, but got (%d, %d)", i, edge.SourceLat, edge.SourceLon)
		}
		if edge.Result.Weight < 1 {
			t.Errorf("Edge %d should carry a weight, but got %d", i, edge.Result.Weight)
		}
	}
}

func TestDanglingEdgeStaysWeightless(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 1000, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 36.0})
	appendTestEdge(t, containers, 1, 99, WeightData{Type: WEIGHT_SPEED, Value: 36.0})

	edges := prepareEdgesForTest(t, containers)
	if len(edges) != 2 {
		t.Fatalf("Expected 2 edges in the pipeline, but got %d", len(edges))
	}
	for _, edge := range edges {
		if edge.Result.Target == 99 && edge.Result.Weight != 0 {
			t.Errorf("Edge with missing target should stay weightless, but got %d", edge.Result.Weight)
		}
		if edge.Result.Target == 2 && edge.Result.Weight != 111 {
			t.Errorf("Resolved edge should keep its weight 111, but got %d", edge.Result.Weight)
		}
	}
}

func TestInvalidWeightTypeIsFatal(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 1000, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_INVALID})

	if err := containers.prepareNodes(); err != nil {
		t.Fatalf("Can't prepare nodes: %v", err)
	}
	if err := containers.prepareEdges(); err == nil {
		t.Error("Preparing an edge with an invalid weight type should fail")
	}
}

func TestNonPositiveSpeedIsFatal(t *testing.T) {
	containers := newTestContainers(t)
	appendTestNode(t, containers, 1, 0, 0)
	appendTestNode(t, containers, 2, 1000, 0)
	appendTestEdge(t, containers, 1, 2, WeightData{Type: WEIGHT_SPEED, Value: 0})

	if err := containers.prepareNodes(); err != nil {
		t.Fatalf("Can't prepare nodes: %v", err)
	}
	if err := containers.prepareEdges(); err == nil {
		t.Error("Preparing an edge with a non-positive speed should fail")
	}
}
