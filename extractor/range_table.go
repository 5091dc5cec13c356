package extractor

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const rangeTableBlockSize = 16

// maxNameLength is the clamp applied to every stored name length, so a
// per-entry length always fits one byte
const maxNameLength = 255

// RangeTable maps an entry index to a byte range inside a concatenated blob.
// It stores the absolute offset of every 16th entry plus one byte per entry
// length, so a lookup touches at most one block. Serialized layout, all
// little-endian:
//
//	u32              sum of all lengths
//	u32              block count
//	u32 × count      absolute offset of the first entry of each block
//	u8 × 16 × count  per-entry lengths, zero padded in the last block
type RangeTable struct {
	sumLengths   uint32
	blockOffsets []uint32
	diffBlocks   [][rangeTableBlockSize]uint8
}

// newRangeTable builds a table over lengths; every length must fit a byte
func newRangeTable(lengths []uint32) RangeTable {
	table := RangeTable{}
	offset := uint32(0)
	for i, length := range lengths {
		if i%rangeTableBlockSize == 0 {
			table.blockOffsets = append(table.blockOffsets, offset)
			table.diffBlocks = append(table.diffBlocks, [rangeTableBlockSize]uint8{})
		}
		table.diffBlocks[len(table.diffBlocks)-1][i%rangeTableBlockSize] = uint8(length)
		offset += length
	}
	table.sumLengths = offset
	return table
}

// SumLengths returns the total number of blob bytes covered by the table
func (table RangeTable) SumLengths() uint32 {
	return table.sumLengths
}

// Lookup returns the byte range [offset, offset+length) of entry i
func (table RangeTable) Lookup(i int) (uint32, uint32) {
	block := i / rangeTableBlockSize
	offset := table.blockOffsets[block]
	for j := 0; j < i%rangeTableBlockSize; j++ {
		offset += uint32(table.diffBlocks[block][j])
	}
	return offset, uint32(table.diffBlocks[block][i%rangeTableBlockSize])
}

func (table RangeTable) write(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], table.sumLengths)
	if _, err := w.Write(buf[:]); err != nil {
		return errors.Wrap(err, "Can't write range table sum")
	}
	binary.LittleEndian.PutUint32(buf[:], uint32(len(table.diffBlocks)))
	if _, err := w.Write(buf[:]); err != nil {
		return errors.Wrap(err, "Can't write range table block count")
	}
	for _, offset := range table.blockOffsets {
		binary.LittleEndian.PutUint32(buf[:], offset)
		if _, err := w.Write(buf[:]); err != nil {
			return errors.Wrap(err, "Can't write range table offsets")
		}
	}
	for i := range table.diffBlocks {
		if _, err := w.Write(table.diffBlocks[i][:]); err != nil {
			return errors.Wrap(err, "Can't write range table blocks")
		}
	}
	return nil
}

// readRangeTable decodes a table serialized by write
func readRangeTable(r io.Reader) (RangeTable, error) {
	var buf [4]byte
	table := RangeTable{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return table, errors.Wrap(err, "Can't read range table sum")
	}
	table.sumLengths = binary.LittleEndian.Uint32(buf[:])
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return table, errors.Wrap(err, "Can't read range table block count")
	}
	blockCount := binary.LittleEndian.Uint32(buf[:])
	table.blockOffsets = make([]uint32, blockCount)
	for i := range table.blockOffsets {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return table, errors.Wrap(err, "Can't read range table offsets")
		}
		table.blockOffsets[i] = binary.LittleEndian.Uint32(buf[:])
	}
	table.diffBlocks = make([][rangeTableBlockSize]uint8, blockCount)
	for i := range table.diffBlocks {
		if _, err := io.ReadFull(r, table.diffBlocks[i][:]); err != nil {
			return table, errors.Wrap(err, "Can't read range table blocks")
		}
	}
	return table, nil
}
