package extractor

import (
	"os"

	"github.com/pkg/errors"
)

// DefaultMemoryLimit bounds the RAM used by a single external sort
const DefaultMemoryLimit = int64(1 << 30)

// ExtractionContainers owns the disk-spilling sequences filled during
// extraction and joins them into the binary files consumed by the graph
// builder. Nodes are still referenced by their OSM IDs at this point.
type ExtractionContainers struct {
	usedNodeIDs  *externalSequence
	allNodes     *externalSequence
	allEdges     *externalSequence
	restrictions *externalSequence
	wayEndpoints *externalSequence

	nameList    []string
	nameIndexes map[string]uint32

	memoryLimit int64
	tempDir     string
	verbose     bool
}

// NewExtractionContainers returns empty containers spilling to tempDir under
// the given per-sort memory budget. Name index 0 is reserved for the empty
// string.
func NewExtractionContainers(memoryLimit int64, tempDir string) *ExtractionContainers {
	if memoryLimit <= 0 {
		memoryLimit = DefaultMemoryLimit
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &ExtractionContainers{
		usedNodeIDs:  newExternalSequence("used-nodes", usedNodeIDBytes, tempDir, memoryLimit),
		allNodes:     newExternalSequence("all-nodes", externalMemoryNodeBytes, tempDir, memoryLimit),
		allEdges:     newExternalSequence("all-edges", internalExtractorEdgeBytes, tempDir, memoryLimit),
		restrictions: newExternalSequence("restrictions", restrictionContainerBytes, tempDir, memoryLimit),
		wayEndpoints: newExternalSequence("way-endpoints", wayEndpointsBytes, tempDir, memoryLimit),
		nameList:     []string{""},
		nameIndexes:  map[string]uint32{"": 0},
		memoryLimit:  memoryLimit,
		tempDir:      tempDir,
	}
}

// SetVerbose toggles progress output of the preparation stages
func (c *ExtractionContainers) SetVerbose(verbose bool) {
	c.verbose = verbose
}

// Close removes all spill files
func (c *ExtractionContainers) Close() {
	c.usedNodeIDs.discard()
	c.allNodes.discard()
	c.allEdges.discard()
	c.restrictions.discard()
	c.wayEndpoints.discard()
}

// AppendNode stores a parsed map node
func (c *ExtractionContainers) AppendNode(node ExternalMemoryNode) error {
	var buf [externalMemoryNodeBytes]byte
	node.encode(buf[:])
	return c.allNodes.append(buf[:])
}

// AppendUsedNodeID marks a node ID as referenced by a way. The same ID may be
// appended any number of times.
func (c *ExtractionContainers) AppendUsedNodeID(nodeID uint64) error {
	var buf [usedNodeIDBytes]byte
	encodeUsedNodeID(buf[:], nodeID)
	return c.usedNodeIDs.append(buf[:])
}

// AppendEdge stores a parsed edge. The caller populates the weight data and
// leaves the source coordinate and weight at their sentinels.
func (c *ExtractionContainers) AppendEdge(edge InternalExtractorEdge) error {
	var buf [internalExtractorEdgeBytes]byte
	edge.encode(buf[:])
	return c.allEdges.append(buf[:])
}

// AppendRestriction stores a turn restriction whose from/to references are
// still way IDs
func (c *ExtractionContainers) AppendRestriction(restriction RestrictionContainer) error {
	var buf [restrictionContainerBytes]byte
	restriction.encode(buf[:])
	return c.restrictions.append(buf[:])
}

// AppendWayEndpoints stores the first/last segment record of a way
func (c *ExtractionContainers) AppendWayEndpoints(way WayEndpoints) error {
	var buf [wayEndpointsBytes]byte
	way.encode(buf[:])
	return c.wayEndpoints.append(buf[:])
}

// InternName stores a street name once and returns its stable index into the
// name list
func (c *ExtractionContainers) InternName(name string) uint32 {
	if id, ok := c.nameIndexes[name]; ok {
		return id
	}
	id := uint32(len(c.nameList))
	c.nameList = append(c.nameList, name)
	c.nameIndexes[name] = id
	return id
}

// PrepareData joins the collected sequences and serializes them: restrictions
// are resolved against way endpoints, nodes are filtered down to the
// referenced ones, edges get coordinates and weights attached. It produces
// the main file, the restrictions file and the street name index. On failure
// partially written files are left behind.
func (c *ExtractionContainers) PrepareData(outputFileName, restrictionsFileName, nameFileName string) error {
	if err := c.prepareRestrictions(); err != nil {
		return errors.Wrap(err, "Can't resolve restrictions")
	}
	if err := c.writeRestrictions(restrictionsFileName); err != nil {
		return errors.Wrap(err, "Can't write restrictions file")
	}

	outFile, err := os.Create(outputFileName)
	if err != nil {
		return errors.Wrap(err, "Can't create output file")
	}
	defer outFile.Close()
	if _, err := outFile.Write(NewFingerPrint().encode()); err != nil {
		return errors.Wrap(err, "Can't write fingerprint")
	}

	if err := c.prepareNodes(); err != nil {
		return errors.Wrap(err, "Can't prepare nodes")
	}
	if err := c.writeNodes(outFile); err != nil {
		return errors.Wrap(err, "Can't write nodes")
	}
	if err := c.prepareEdges(); err != nil {
		return errors.Wrap(err, "Can't prepare edges")
	}
	if err := c.writeEdges(outFile); err != nil {
		return errors.Wrap(err, "Can't write edges")
	}
	if err := outFile.Close(); err != nil {
		return errors.Wrap(err, "Can't close output file")
	}

	if err := c.writeNames(nameFileName); err != nil {
		return errors.Wrap(err, "Can't write street name index")
	}
	return nil
}
