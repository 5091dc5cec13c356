package extractor

import (
	"bytes"
	"fmt"
	"testing"
)

func TestRangeTableLookup(t *testing.T) {
	lengths := []uint32{0, 13, 7, 255, 1, 0, 42}
	table := newRangeTable(lengths)
	expectedOffset := uint32(0)
	for i, length := range lengths {
		offset, got := table.Lookup(i)
		if offset != expectedOffset {
			t.Errorf("Offset of entry %d should be %d, but got %d", i, expectedOffset, offset)
		}
		if got != length {
			t.Errorf("Length of entry %d should be %d, but got %d", i, length, got)
		}
		expectedOffset += length
	}
	if table.SumLengths() != expectedOffset {
		t.Errorf("Sum of lengths should be %d, but got %d", expectedOffset, table.SumLengths())
	}
}

func TestRangeTableBlockBoundaries(t *testing.T) {
	// Three full blocks plus a partial one
	lengths := make([]uint32, 53)
	for i := range lengths {
		lengths[i] = uint32(i % 200)
	}
	table := newRangeTable(lengths)
	expectedOffset := uint32(0)
	for i, length := range lengths {
		offset, got := table.Lookup(i)
		if offset != expectedOffset || got != length {
			t.Fatalf("Entry %d should be (%d, %d), but got (%d, %d)", i, expectedOffset, length, offset, got)
		}
		expectedOffset += length
	}
}

func TestRangeTableRoundTrip(t *testing.T) {
	lengths := make([]uint32, 40)
	for i := range lengths {
		lengths[i] = uint32((i * 17) % 256)
	}
	table := newRangeTable(lengths)

	buffer := bytes.Buffer{}
	if err := table.write(&buffer); err != nil {
		t.Fatalf("Can't serialize range table: %v", err)
	}
	decoded, err := readRangeTable(&buffer)
	if err != nil {
		t.Fatalf("Can't deserialize range table: %v", err)
	}
	if decoded.SumLengths() != table.SumLengths() {
		t.Errorf("Sum of lengths should be %d, but got %d", table.SumLengths(), decoded.SumLengths())
	}
	for i := range lengths {
		wantOffset, wantLength := table.Lookup(i)
		gotOffset, gotLength := decoded.Lookup(i)
		if wantOffset != gotOffset || wantLength != gotLength {
			t.Fatalf("Entry %d should be (%d, %d), but got (%d, %d)", i, wantOffset, wantLength, gotOffset, gotLength)
		}
	}
}

func TestRangeTableEmpty(t *testing.T) {
	table := newRangeTable(nil)
	if table.SumLengths() != 0 {
		t.Errorf("Empty table should cover 0 bytes, but got %d", table.SumLengths())
	}
	buffer := bytes.Buffer{}
	if err := table.write(&buffer); err != nil {
		t.Fatalf("Can't serialize empty range table: %v", err)
	}
	if _, err := readRangeTable(&buffer); err != nil {
		t.Fatalf("Can't deserialize empty range table: %v", err)
	}
}

func ExampleRangeTable_Lookup() {
	table := newRangeTable([]uint32{0, 5, 3})
	offset, length := table.Lookup(2)
	fmt.Println(offset, length)
	// Output: 5 3
}
