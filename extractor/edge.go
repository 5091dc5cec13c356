package extractor

import (
	"encoding/binary"
	"math"
)

// WeightType selects how the weight of an edge is derived from its tag data
type WeightType uint8

const (
	WEIGHT_SPEED = WeightType(iota + 1)
	WEIGHT_EDGE_DURATION
	WEIGHT_WAY_DURATION
	WEIGHT_INVALID = WeightType(0)
)

func (iotaIdx WeightType) String() string {
	if iotaIdx > WEIGHT_WAY_DURATION {
		return "unknown"
	}
	return [...]string{"invalid", "speed", "edge_duration", "way_duration"}[iotaIdx]
}

// Travel modes carried on each written edge
const (
	TravelModeInaccessible = uint8(0)
	TravelModeDriving      = uint8(1)
)

const (
	nodeBasedEdgeBytes         = 30
	internalExtractorEdgeBytes = 47
)

// NodeBasedEdge is the fixed-size edge record written to the main output file
type NodeBasedEdge struct {
	Source           uint64
	Target           uint64
	NameID           uint32
	Weight           int32
	Forward          uint8
	Backward         uint8
	Roundabout       uint8
	IgnoreInGrid     uint8
	AccessRestricted uint8
	TravelMode       uint8
}

// WeightData carries the tag-derived speed or duration an edge weight is
// computed from. Value is km/h for WEIGHT_SPEED and seconds otherwise.
type WeightData struct {
	Type  WeightType
	Value float64
}

// InternalExtractorEdge is the in-pipeline edge record. SourceLat/SourceLon
// and Result.Weight start at their sentinels and are filled by the resolver
// passes.
type InternalExtractorEdge struct {
	Result     NodeBasedEdge
	SourceLat  int32
	SourceLon  int32
	WeightData WeightData
}

func (edge NodeBasedEdge) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], edge.Source)
	binary.LittleEndian.PutUint64(buf[8:16], edge.Target)
	binary.LittleEndian.PutUint32(buf[16:20], edge.NameID)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(edge.Weight))
	buf[24] = edge.Forward
	buf[25] = edge.Backward
	buf[26] = edge.Roundabout
	buf[27] = edge.IgnoreInGrid
	buf[28] = edge.AccessRestricted
	buf[29] = edge.TravelMode
}

func decodeNodeBasedEdge(buf []byte) NodeBasedEdge {
	return NodeBasedEdge{
		Source:           binary.LittleEndian.Uint64(buf[0:8]),
		Target:           binary.LittleEndian.Uint64(buf[8:16]),
		NameID:           binary.LittleEndian.Uint32(buf[16:20]),
		Weight:           int32(binary.LittleEndian.Uint32(buf[20:24])),
		Forward:          buf[24],
		Backward:         buf[25],
		Roundabout:       buf[26],
		IgnoreInGrid:     buf[27],
		AccessRestricted: buf[28],
		TravelMode:       buf[29],
	}
}

func (edge InternalExtractorEdge) encode(buf []byte) {
	edge.Result.encode(buf[0:nodeBasedEdgeBytes])
	binary.LittleEndian.PutUint32(buf[30:34], uint32(edge.SourceLat))
	binary.LittleEndian.PutUint32(buf[34:38], uint32(edge.SourceLon))
	buf[38] = uint8(edge.WeightData.Type)
	binary.LittleEndian.PutUint64(buf[39:47], math.Float64bits(edge.WeightData.Value))
}

func decodeInternalExtractorEdge(buf []byte) InternalExtractorEdge {
	return InternalExtractorEdge{
		Result:    decodeNodeBasedEdge(buf[0:nodeBasedEdgeBytes]),
		SourceLat: int32(binary.LittleEndian.Uint32(buf[30:34])),
		SourceLon: int32(binary.LittleEndian.Uint32(buf[34:38])),
		WeightData: WeightData{
			Type:  WeightType(buf[38]),
			Value: math.Float64frombits(binary.LittleEndian.Uint64(buf[39:47])),
		},
	}
}

// lessEdgeBySource orders raw edge records by source node ID
func lessEdgeBySource(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[0:8]) < binary.LittleEndian.Uint64(b[0:8])
}

// lessEdgeByTarget orders raw edge records by target node ID
func lessEdgeByTarget(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[8:16]) < binary.LittleEndian.Uint64(b[8:16])
}

func boolToByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
