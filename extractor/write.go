package extractor

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// writeCountPlaceholder reserves a 4 byte count field at the current write
// position and returns its offset for later patching
func writeCountPlaceholder(file *os.File) (int64, error) {
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.Wrap(err, "Can't locate count field")
	}
	var zero [4]byte
	if _, err := file.Write(zero[:]); err != nil {
		return 0, errors.Wrap(err, "Can't reserve count field")
	}
	return offset, nil
}

// patchCount overwrites a previously reserved count field without moving the
// current write position
func patchCount(file *os.File, offset int64, count uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], count)
	if _, err := file.WriteAt(buf[:], offset); err != nil {
		return errors.Wrap(err, "Can't patch count field")
	}
	return nil
}
