package extractor

import "encoding/binary"

// coordinatePrecision is the fixed-point scale of stored coordinates (micro-degrees)
const coordinatePrecision = 1000000.0

// specialNodeID marks unresolved node references
const specialNodeID = ^uint64(0)

const (
	usedNodeIDBytes         = 8
	externalMemoryNodeBytes = 18
)

// ExternalMemoryNode is a parsed map node. It is serialized verbatim into the
// main output file when referenced by at least one way.
type ExternalMemoryNode struct {
	NodeID       uint64
	Lat          int32
	Lon          int32
	Barrier      uint8
	TrafficLight uint8
}

func (node ExternalMemoryNode) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], node.NodeID)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(node.Lat))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(node.Lon))
	buf[16] = node.Barrier
	buf[17] = node.TrafficLight
}

func decodeExternalMemoryNode(buf []byte) ExternalMemoryNode {
	return ExternalMemoryNode{
		NodeID:       binary.LittleEndian.Uint64(buf[0:8]),
		Lat:          int32(binary.LittleEndian.Uint32(buf[8:12])),
		Lon:          int32(binary.LittleEndian.Uint32(buf[12:16])),
		Barrier:      buf[16],
		TrafficLight: buf[17],
	}
}

func encodeUsedNodeID(buf []byte, nodeID uint64) {
	binary.LittleEndian.PutUint64(buf[0:8], nodeID)
}

func decodeUsedNodeID(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf[0:8])
}

// lessNodeByID orders raw node records by OSM node ID
func lessNodeByID(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[0:8]) < binary.LittleEndian.Uint64(b[0:8])
}

// lessUsedNodeID orders raw used-node-id records
func lessUsedNodeID(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[0:8]) < binary.LittleEndian.Uint64(b[0:8])
}
