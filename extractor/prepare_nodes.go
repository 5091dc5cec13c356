package extractor

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

// prepareNodes sorts the used node IDs, drops duplicates and sorts all parsed
// nodes so both streams can be merge-joined
func (c *ExtractionContainers) prepareNodes() error {
	if c.verbose {
		fmt.Printf("Sorting %d used node IDs... ", c.usedNodeIDs.len())
	}
	st := time.Now()
	if err := c.usedNodeIDs.sort(lessUsedNodeID); err != nil {
		return errors.Wrap(err, "Can't sort used node IDs")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Erasing duplicate node IDs... ")
	}
	st = time.Now()
	if err := c.usedNodeIDs.unique(); err != nil {
		return errors.Wrap(err, "Can't erase duplicate node IDs")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Sorting %d nodes... ", c.allNodes.len())
	}
	st = time.Now()
	if err := c.allNodes.sort(lessNodeByID); err != nil {
		return errors.Wrap(err, "Can't sort nodes")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return nil
}

// writeNodes merge-joins the used node IDs with all parsed nodes and
// serializes every match. The node count in front of the records is patched
// afterwards without moving the write position.
func (c *ExtractionContainers) writeNodes(file *os.File) error {
	countPos, err := writeCountPlaceholder(file)
	if err != nil {
		return err
	}
	if c.verbose {
		fmt.Printf("Confirming/writing used nodes... ")
	}
	st := time.Now()

	idCur, err := c.usedNodeIDs.cursor()
	if err != nil {
		return err
	}
	defer idCur.close()
	nodeCur, err := c.allNodes.cursor()
	if err != nil {
		return err
	}
	defer nodeCur.close()

	var written uint32
	for idCur.valid && nodeCur.valid {
		usedID := decodeUsedNodeID(idCur.record())
		nodeID := decodeUsedNodeID(nodeCur.record())
		if usedID < nodeID {
			if err := idCur.advance(); err != nil {
				return err
			}
			continue
		}
		if usedID > nodeID {
			if err := nodeCur.advance(); err != nil {
				return err
			}
			continue
		}
		if _, err := file.Write(nodeCur.record()); err != nil {
			return errors.Wrap(err, "Can't write node record")
		}
		written++
		if err := idCur.advance(); err != nil {
			return err
		}
		if err := nodeCur.advance(); err != nil {
			return err
		}
	}
	if err := patchCount(file, countPos, written); err != nil {
		return err
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("Processed %d nodes\n", written)
	}
	return nil
}
