package extractor

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

// writeNames serializes the street name index: a range table over the
// clamped name lengths, the total blob length and the concatenated clamped
// name bytes
func (c *ExtractionContainers) writeNames(path string) error {
	if c.verbose {
		fmt.Printf("Writing street name index... ")
	}
	st := time.Now()

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Can't create name index file")
	}
	defer file.Close()

	lengths := make([]uint32, 0, len(c.nameList))
	var totalLength uint32
	for _, name := range c.nameList {
		length := uint32(len(name))
		if length > maxNameLength {
			length = maxNameLength
		}
		lengths = append(lengths, length)
		totalLength += length
	}

	table := newRangeTable(lengths)
	if err := table.write(file); err != nil {
		return err
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], totalLength)
	if _, err := file.Write(buf[:]); err != nil {
		return errors.Wrap(err, "Can't write name blob length")
	}
	for i, name := range c.nameList {
		if _, err := file.Write([]byte(name)[:lengths[i]]); err != nil {
			return errors.Wrap(err, "Can't write name bytes")
		}
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "Can't close name index file")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return nil
}
