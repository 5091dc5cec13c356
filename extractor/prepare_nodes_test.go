package extractor

import (
	"encoding/binary"
	"testing"
)

func TestPrepareNodesStrictlyAscendingUsedIDs(t *testing.T) {
	containers := newTestContainers(t)
	for _, id := range []uint64{5, 3, 5, 1, 3, 9, 1, 1} {
		if err := containers.AppendUsedNodeID(id); err != nil {
			t.Fatalf("Can't append used node ID: %v", err)
		}
	}
	if err := containers.prepareNodes(); err != nil {
		t.Fatalf("Can't prepare nodes: %v", err)
	}
	ids := []uint64{}
	err := containers.usedNodeIDs.scan(func(record []byte) error {
		ids = append(ids, binary.LittleEndian.Uint64(record))
		return nil
	})
	if err != nil {
		t.Fatalf("Can't scan used node IDs: %v", err)
	}
	expected := []uint64{1, 3, 5, 9}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %d used node IDs, but got %d", len(expected), len(ids))
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("Used node ID %d should be %d, but got %d", i, expected[i], id)
		}
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("Used node IDs are not strictly ascending at %d", i)
		}
	}
}

func TestWriteNodesKeepsIntersectionOnly(t *testing.T) {
	containers := newTestContainers(t)
	nodes := []ExternalMemoryNode{
		{NodeID: 1, Lat: 52100000, Lon: 11600000},
		{NodeID: 2, Lat: 52101000, Lon: 11601000, TrafficLight: 1},
		{NodeID: 5, Lat: 52102000, Lon: 11602000},
	}
	for _, node := range nodes {
		if err := containers.AppendNode(node); err != nil {
			t.Fatalf("Can't append node: %v", err)
		}
	}
	// Node 5 is parsed but unreferenced, node 7 is referenced but missing
	for _, id := range []uint64{2, 1, 2, 7} {
		if err := containers.AppendUsedNodeID(id); err != nil {
			t.Fatalf("Can't append used node ID: %v", err)
		}
	}

	dir := t.TempDir()
	output := dir + "/graph.osrm"
	restrictions := dir + "/graph.osrm.restrictions"
	names := dir + "/graph.osrm.names"
	if err := containers.PrepareData(output, restrictions, names); err != nil {
		t.Fatalf("Can't prepare data: %v", err)
	}

	contents, err := ReadMainFile(output)
	if err != nil {
		t.Fatalf("Can't read main file: %v", err)
	}
	if len(contents.Nodes) != 2 {
		t.Fatalf("Node count should be 2, but got %d", len(contents.Nodes))
	}
	if contents.Nodes[0] != nodes[0] {
		t.Errorf("First written node should be %v, but got %v", nodes[0], contents.Nodes[0])
	}
	if contents.Nodes[1] != nodes[1] {
		t.Errorf("Second written node should be %v, but got %v", nodes[1], contents.Nodes[1])
	}
}
