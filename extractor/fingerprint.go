package extractor

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// fingerPrintMagic spells "OSRM" when serialized little-endian
const fingerPrintMagic = uint32(0x4D52534F)

const fingerPrintBytes = 8

// FingerPrint identifies format and version of every produced binary file
type FingerPrint struct {
	Magic uint32
	Major uint8
	Minor uint8
	Patch uint8
	Flags uint8
}

// NewFingerPrint returns the fingerprint of the current file format
func NewFingerPrint() FingerPrint {
	return FingerPrint{
		Magic: fingerPrintMagic,
		Major: 0,
		Minor: 4,
		Patch: 5,
	}
}

// Valid reports whether a file carrying this fingerprint can be read by this package
func (fp FingerPrint) Valid() bool {
	return fp.Magic == fingerPrintMagic
}

func (fp FingerPrint) encode() []byte {
	buf := make([]byte, fingerPrintBytes)
	binary.LittleEndian.PutUint32(buf[0:4], fp.Magic)
	buf[4] = fp.Major
	buf[5] = fp.Minor
	buf[6] = fp.Patch
	buf[7] = fp.Flags
	return buf
}

func readFingerPrint(r io.Reader) (FingerPrint, error) {
	buf := make([]byte, fingerPrintBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return FingerPrint{}, errors.Wrap(err, "Can't read fingerprint")
	}
	return FingerPrint{
		Magic: binary.LittleEndian.Uint32(buf[0:4]),
		Major: buf[4],
		Minor: buf[5],
		Patch: buf[6],
		Flags: buf[7],
	}, nil
}
