package extractor

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

type restrictionSide uint8

const (
	restrictionFromSide = restrictionSide(iota + 1)
	restrictionToSide
)

// prepareRestrictions rewrites the way references of each restriction into
// concrete node IDs by merge-joining the restrictions with the first/last
// segment records of the referenced ways. Restrictions whose via node matches
// neither end of the way keep the special node ID and are dropped at write
// time.
func (c *ExtractionContainers) prepareRestrictions() error {
	if c.verbose {
		fmt.Printf("Sorting %d way endpoint records... ", c.wayEndpoints.len())
	}
	st := time.Now()
	if err := c.wayEndpoints.sort(lessWayEndpointsByWayID); err != nil {
		return errors.Wrap(err, "Can't sort way endpoints")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Sorting %d restrictions by from-way... ", c.restrictions.len())
	}
	st = time.Now()
	if err := c.restrictions.sort(lessRestrictionByFromWay); err != nil {
		return errors.Wrap(err, "Can't sort restrictions by from-way")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Fixing restriction starts... ")
	}
	st = time.Now()
	if err := c.resolveRestrictionSide(restrictionFromSide); err != nil {
		return errors.Wrap(err, "Can't resolve restriction starts")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Sorting restrictions by to-way... ")
	}
	st = time.Now()
	if err := c.restrictions.sort(lessRestrictionByToWay); err != nil {
		return errors.Wrap(err, "Can't sort restrictions by to-way")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Fixing restriction ends... ")
	}
	st = time.Now()
	if err := c.resolveRestrictionSide(restrictionToSide); err != nil {
		return errors.Wrap(err, "Can't resolve restriction ends")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return nil
}

// resolveRestrictionSide walks the way-sorted restrictions and the way
// endpoint records with two cursors. On a way match the via node picks the
// neighbor node of the referenced way; only the restriction cursor advances,
// so consecutive restrictions on the same way all see the endpoint record.
func (c *ExtractionContainers) resolveRestrictionSide(side restrictionSide) error {
	replacement := newExternalSequence("restrictions", restrictionContainerBytes, c.tempDir, c.memoryLimit)

	restrictionCur, err := c.restrictions.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer restrictionCur.close()
	endpointCur, err := c.wayEndpoints.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer endpointCur.close()

	abort := func(err error) error {
		replacement.discard()
		return err
	}

	for restrictionCur.valid && endpointCur.valid {
		restriction := decodeRestrictionContainer(restrictionCur.record())
		endpoints := decodeWayEndpoints(endpointCur.record())

		wayID := restriction.FromWay
		if side == restrictionToSide {
			wayID = restriction.ToWay
		}

		if endpoints.WayID < wayID {
			if err := endpointCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}
		if endpoints.WayID > wayID {
			if err := replacement.append(restrictionCur.record()); err != nil {
				return abort(err)
			}
			if err := restrictionCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}

		via := restriction.Restriction.ViaNode
		resolved := specialNodeID
		if endpoints.FirstSegmentSource == via {
			resolved = endpoints.FirstSegmentTarget
		} else if endpoints.LastSegmentTarget == via {
			resolved = endpoints.LastSegmentSource
		}
		if resolved != specialNodeID {
			if side == restrictionFromSide {
				restriction.Restriction.FromNode = resolved
			} else {
				restriction.Restriction.ToNode = resolved
			}
		}
		var buf [restrictionContainerBytes]byte
		restriction.encode(buf[:])
		if err := replacement.append(buf[:]); err != nil {
			return abort(err)
		}
		if err := restrictionCur.advance(); err != nil {
			return abort(err)
		}
	}
	for restrictionCur.valid {
		if err := replacement.append(restrictionCur.record()); err != nil {
			return abort(err)
		}
		if err := restrictionCur.advance(); err != nil {
			return abort(err)
		}
	}
	if err := c.restrictions.replace(replacement); err != nil {
		return abort(err)
	}
	return nil
}

// writeRestrictions serializes every restriction whose both sides resolved to
// concrete node IDs. The count in front of the records is patched afterwards.
func (c *ExtractionContainers) writeRestrictions(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Can't create restrictions file")
	}
	defer file.Close()

	if _, err := file.Write(NewFingerPrint().encode()); err != nil {
		return errors.Wrap(err, "Can't write fingerprint")
	}
	countPos, err := writeCountPlaceholder(file)
	if err != nil {
		return err
	}

	var written uint32
	err = c.restrictions.scan(func(record []byte) error {
		restriction := decodeRestrictionContainer(record)
		if restriction.Restriction.FromNode == specialNodeID || restriction.Restriction.ToNode == specialNodeID {
			return nil
		}
		var buf [turnRestrictionBytes]byte
		restriction.Restriction.encode(buf[:])
		if _, err := file.Write(buf[:]); err != nil {
			return errors.Wrap(err, "Can't write restriction record")
		}
		written++
		return nil
	})
	if err != nil {
		return err
	}
	if err := patchCount(file, countPos, written); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "Can't close restrictions file")
	}
	if c.verbose {
		fmt.Printf("Usable restrictions: %d\n", written)
	}
	return nil
}
