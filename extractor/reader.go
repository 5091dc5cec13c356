package extractor

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// MainFile is the decoded content of a main output file
type MainFile struct {
	FingerPrint FingerPrint
	Nodes       []ExternalMemoryNode
	Edges       []NodeBasedEdge
}

// RestrictionsFile is the decoded content of a restrictions output file
type RestrictionsFile struct {
	FingerPrint  FingerPrint
	Restrictions []TurnRestriction
}

// NamesFile is the decoded content of a street name index file
type NamesFile struct {
	Table RangeTable
	Blob  []byte
}

// Name returns the clamped name stored at index i
func (nf *NamesFile) Name(i int) string {
	offset, length := nf.Table.Lookup(i)
	return string(nf.Blob[offset : offset+length])
}

func readCount(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "Can't read record count")
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadMainFile decodes a main output file produced by PrepareData
func ReadMainFile(path string) (*MainFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open main file")
	}
	defer file.Close()
	r := bufio.NewReaderSize(file, 1<<16)

	contents := &MainFile{}
	contents.FingerPrint, err = readFingerPrint(r)
	if err != nil {
		return nil, err
	}
	if !contents.FingerPrint.Valid() {
		return nil, errors.Errorf("File '%s' carries an unknown fingerprint", path)
	}

	nodeCount, err := readCount(r)
	if err != nil {
		return nil, err
	}
	contents.Nodes = make([]ExternalMemoryNode, 0, nodeCount)
	buf := make([]byte, externalMemoryNodeBytes)
	for i := uint32(0); i < nodeCount; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "Can't read node record")
		}
		contents.Nodes = append(contents.Nodes, decodeExternalMemoryNode(buf))
	}

	edgeCount, err := readCount(r)
	if err != nil {
		return nil, err
	}
	contents.Edges = make([]NodeBasedEdge, 0, edgeCount)
	buf = make([]byte, nodeBasedEdgeBytes)
	for i := uint32(0); i < edgeCount; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "Can't read edge record")
		}
		contents.Edges = append(contents.Edges, decodeNodeBasedEdge(buf))
	}
	return contents, nil
}

// ReadRestrictionsFile decodes a restrictions file produced by PrepareData
func ReadRestrictionsFile(path string) (*RestrictionsFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open restrictions file")
	}
	defer file.Close()
	r := bufio.NewReaderSize(file, 1<<16)

	contents := &RestrictionsFile{}
	contents.FingerPrint, err = readFingerPrint(r)
	if err != nil {
		return nil, err
	}
	if !contents.FingerPrint.Valid() {
		return nil, errors.Errorf("File '%s' carries an unknown fingerprint", path)
	}

	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	contents.Restrictions = make([]TurnRestriction, 0, count)
	buf := make([]byte, turnRestrictionBytes)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "Can't read restriction record")
		}
		contents.Restrictions = append(contents.Restrictions, decodeTurnRestriction(buf))
	}
	return contents, nil
}

// ReadNamesFile decodes a street name index file produced by PrepareData
func ReadNamesFile(path string) (*NamesFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open name index file")
	}
	defer file.Close()
	r := bufio.NewReaderSize(file, 1<<16)

	table, err := readRangeTable(r)
	if err != nil {
		return nil, err
	}
	totalLength, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if totalLength != table.SumLengths() {
		return nil, errors.Errorf("Name blob length %d does not match the range table sum %d", totalLength, table.SumLengths())
	}
	blob := make([]byte, totalLength)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, errors.Wrap(err, "Can't read name blob")
	}
	return &NamesFile{Table: table, Blob: blob}, nil
}
