package extractor

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

// prepareEdges attaches the source coordinate to every edge, then the target
// coordinate, and derives the integer edge weight in deciseconds
func (c *ExtractionContainers) prepareEdges() error {
	if c.verbose {
		fmt.Printf("Sorting %d edges by source... ", c.allEdges.len())
	}
	st := time.Now()
	if err := c.allEdges.sort(lessEdgeBySource); err != nil {
		return errors.Wrap(err, "Can't sort edges by source")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Setting start coordinates... ")
	}
	st = time.Now()
	if err := c.setSourceCoordinates(); err != nil {
		return errors.Wrap(err, "Can't set start coordinates")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Sorting %d edges by target... ", c.allEdges.len())
	}
	st = time.Now()
	if err := c.allEdges.sort(lessEdgeByTarget); err != nil {
		return errors.Wrap(err, "Can't sort edges by target")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if c.verbose {
		fmt.Printf("Computing edge weights... ")
	}
	st = time.Now()
	if err := c.computeEdgeWeights(); err != nil {
		return errors.Wrap(err, "Can't compute edge weights")
	}
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}
	return nil
}

// setSourceCoordinates merge-joins the source-sorted edges with the sorted
// nodes and copies the node coordinate onto every matching edge. The node
// cursor is not advanced on a match since several edges may share a source.
func (c *ExtractionContainers) setSourceCoordinates() error {
	replacement := newExternalSequence("all-edges", internalExtractorEdgeBytes, c.tempDir, c.memoryLimit)

	edgeCur, err := c.allEdges.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer edgeCur.close()
	nodeCur, err := c.allNodes.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer nodeCur.close()

	abort := func(err error) error {
		replacement.discard()
		return err
	}

	for edgeCur.valid && nodeCur.valid {
		source := binary.LittleEndian.Uint64(edgeCur.record()[0:8])
		nodeID := binary.LittleEndian.Uint64(nodeCur.record()[0:8])
		if source < nodeID {
			if err := replacement.append(edgeCur.record()); err != nil {
				return abort(err)
			}
			if err := edgeCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}
		if source > nodeID {
			if err := nodeCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}
		node := decodeExternalMemoryNode(nodeCur.record())
		edge := decodeInternalExtractorEdge(edgeCur.record())
		edge.SourceLat = node.Lat
		edge.SourceLon = node.Lon
		var buf [internalExtractorEdgeBytes]byte
		edge.encode(buf[:])
		if err := replacement.append(buf[:]); err != nil {
			return abort(err)
		}
		if err := edgeCur.advance(); err != nil {
			return abort(err)
		}
	}
	for edgeCur.valid {
		if err := replacement.append(edgeCur.record()); err != nil {
			return abort(err)
		}
		if err := edgeCur.advance(); err != nil {
			return abort(err)
		}
	}
	if err := c.allEdges.replace(replacement); err != nil {
		return abort(err)
	}
	return nil
}

// computeEdgeWeights merge-joins the target-sorted edges with the sorted
// nodes and derives the weight of every edge whose source coordinate
// resolved. Edges whose target never made it into the node list are passed
// through with weight 0 and filtered by the writer.
func (c *ExtractionContainers) computeEdgeWeights() error {
	replacement := newExternalSequence("all-edges", internalExtractorEdgeBytes, c.tempDir, c.memoryLimit)

	edgeCur, err := c.allEdges.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer edgeCur.close()
	nodeCur, err := c.allNodes.cursor()
	if err != nil {
		replacement.discard()
		return err
	}
	defer nodeCur.close()

	abort := func(err error) error {
		replacement.discard()
		return err
	}

	for edgeCur.valid && nodeCur.valid {
		target := binary.LittleEndian.Uint64(edgeCur.record()[8:16])
		nodeID := binary.LittleEndian.Uint64(nodeCur.record()[0:8])
		if target < nodeID {
			// FIXME the target is missing from the node list, the data is broken
			if err := replacement.append(edgeCur.record()); err != nil {
				return abort(err)
			}
			if err := edgeCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}
		if target > nodeID {
			if err := nodeCur.advance(); err != nil {
				return abort(err)
			}
			continue
		}
		edge := decodeInternalExtractorEdge(edgeCur.record())
		if edge.SourceLat != math.MinInt32 && edge.SourceLon != math.MinInt32 {
			node := decodeExternalMemoryNode(nodeCur.record())
			distance := euclideanDistance(edge.SourceLat, edge.SourceLon, node.Lat, node.Lon)
			weight, err := edgeWeight(edge.WeightData, distance)
			if err != nil {
				return abort(err)
			}
			edge.Result.Weight = weight
		}
		var buf [internalExtractorEdgeBytes]byte
		edge.encode(buf[:])
		if err := replacement.append(buf[:]); err != nil {
			return abort(err)
		}
		if err := edgeCur.advance(); err != nil {
			return abort(err)
		}
	}
	for edgeCur.valid {
		if err := replacement.append(edgeCur.record()); err != nil {
			return abort(err)
		}
		if err := edgeCur.advance(); err != nil {
			return abort(err)
		}
	}
	if err := c.allEdges.replace(replacement); err != nil {
		return abort(err)
	}
	return nil
}

// edgeWeight converts tag-derived weight data into deciseconds. distance is
// in meters, speeds in km/h, durations in seconds.
func edgeWeight(data WeightData, distance float64) (int32, error) {
	var raw float64
	switch data.Type {
	case WEIGHT_EDGE_DURATION, WEIGHT_WAY_DURATION:
		raw = data.Value * 10.0
	case WEIGHT_SPEED:
		if data.Value <= 0 {
			return 0, errors.Errorf("Edge carries non-positive speed %f", data.Value)
		}
		raw = (distance * 10.0) / (data.Value / 3.6)
	default:
		return 0, errors.Errorf("Invalid weight type '%s'", data.Type)
	}
	weight := int32(math.Floor(raw + 0.5))
	if weight < 1 {
		weight = 1
	}
	return weight, nil
}

// writeEdges serializes every edge that received a weight, keeping the
// target-sorted order of the final pass. The edge count in front of the
// records is patched afterwards.
func (c *ExtractionContainers) writeEdges(file *os.File) error {
	countPos, err := writeCountPlaceholder(file)
	if err != nil {
		return err
	}
	if c.verbose {
		fmt.Printf("Writing used edges... ")
	}
	st := time.Now()

	var written uint32
	err = c.allEdges.scan(func(record []byte) error {
		edge := decodeInternalExtractorEdge(record)
		if edge.Result.Weight <= 0 {
			return nil
		}
		var buf [nodeBasedEdgeBytes]byte
		edge.Result.encode(buf[:])
		if _, err := file.Write(buf[:]); err != nil {
			return errors.Wrap(err, "Can't write edge record")
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
	if c.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("Processed %d edges\n", written)
	}
	return nil
}
