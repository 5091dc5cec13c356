package extractor

import "encoding/binary"

const wayEndpointsBytes = 40

// WayEndpoints stores the node IDs of the first and last segment of a way.
// The restriction resolver uses it to translate a (way, via-node) pair into
// the neighbor node adjacent to the via node along that way.
type WayEndpoints struct {
	WayID              uint64
	FirstSegmentSource uint64
	FirstSegmentTarget uint64
	LastSegmentSource  uint64
	LastSegmentTarget  uint64
}

func (way WayEndpoints) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], way.WayID)
	binary.LittleEndian.PutUint64(buf[8:16], way.FirstSegmentSource)
	binary.LittleEndian.PutUint64(buf[16:24], way.FirstSegmentTarget)
	binary.LittleEndian.PutUint64(buf[24:32], way.LastSegmentSource)
	binary.LittleEndian.PutUint64(buf[32:40], way.LastSegmentTarget)
}

func decodeWayEndpoints(buf []byte) WayEndpoints {
	return WayEndpoints{
		WayID:              binary.LittleEndian.Uint64(buf[0:8]),
		FirstSegmentSource: binary.LittleEndian.Uint64(buf[8:16]),
		FirstSegmentTarget: binary.LittleEndian.Uint64(buf[16:24]),
		LastSegmentSource:  binary.LittleEndian.Uint64(buf[24:32]),
		LastSegmentTarget:  binary.LittleEndian.Uint64(buf[32:40]),
	}
}

// lessWayEndpointsByWayID orders raw way endpoint records by way ID
func lessWayEndpointsByWayID(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[0:8]) < binary.LittleEndian.Uint64(b[0:8])
}
