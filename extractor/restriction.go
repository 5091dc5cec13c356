package extractor

import "encoding/binary"

const (
	turnRestrictionBytes      = 25
	restrictionContainerBytes = 41
)

// TurnRestriction is the fixed-size payload written to the restrictions file.
// FromNode and ToNode hold the resolved neighbor node IDs adjacent to ViaNode
// along the referenced ways; unresolved sides stay at the special node ID.
type TurnRestriction struct {
	FromNode uint64
	ViaNode  uint64
	ToNode   uint64
	IsOnly   uint8
}

// RestrictionContainer carries a restriction together with the way IDs its
// from/to nodes still have to be resolved from
type RestrictionContainer struct {
	Restriction TurnRestriction
	FromWay     uint64
	ToWay       uint64
}

func (restriction TurnRestriction) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], restriction.FromNode)
	binary.LittleEndian.PutUint64(buf[8:16], restriction.ViaNode)
	binary.LittleEndian.PutUint64(buf[16:24], restriction.ToNode)
	buf[24] = restriction.IsOnly
}

func decodeTurnRestriction(buf []byte) TurnRestriction {
	return TurnRestriction{
		FromNode: binary.LittleEndian.Uint64(buf[0:8]),
		ViaNode:  binary.LittleEndian.Uint64(buf[8:16]),
		ToNode:   binary.LittleEndian.Uint64(buf[16:24]),
		IsOnly:   buf[24],
	}
}

func (container RestrictionContainer) encode(buf []byte) {
	container.Restriction.encode(buf[0:turnRestrictionBytes])
	binary.LittleEndian.PutUint64(buf[25:33], container.FromWay)
	binary.LittleEndian.PutUint64(buf[33:41], container.ToWay)
}

func decodeRestrictionContainer(buf []byte) RestrictionContainer {
	return RestrictionContainer{
		Restriction: decodeTurnRestriction(buf[0:turnRestrictionBytes]),
		FromWay:     binary.LittleEndian.Uint64(buf[25:33]),
		ToWay:       binary.LittleEndian.Uint64(buf[33:41]),
	}
}

// lessRestrictionByFromWay orders raw restriction records by the from-way ID
func lessRestrictionByFromWay(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[25:33]) < binary.LittleEndian.Uint64(b[25:33])
}

// lessRestrictionByToWay orders raw restriction records by the to-way ID
func lessRestrictionByToWay(a, b []byte) bool {
	return binary.LittleEndian.Uint64(a[33:41]) < binary.LittleEndian.Uint64(b[33:41])
}
