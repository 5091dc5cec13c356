package extractor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner is implemented by both the PBF and the XML scanner
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

const mphToKmh = 1.609344

func newScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	}
	return nil, errors.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
}

// readOSM scans ways, nodes and restriction relations of the input file into
// the extraction containers
func (e *Extractor) readOSM(containers *ExtractionContainers) error {
	file, err := os.Open(e.filename)
	if err != nil {
		return errors.Wrap(err, "File open")
	}
	defer file.Close()

	/* Process ways */
	if e.verbose {
		fmt.Printf("Scanning ways... ")
	}
	st := time.Now()
	wayCount := 0
	{
		scannerWays, err := newScanner(e.filename, file)
		if err != nil {
			return err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			highway := way.Tags.Find(e.cfg.EntityName)
			if highway == "" || !e.cfg.CheckTag(highway) {
				continue
			}
			if len(way.Nodes) < 2 {
				continue
			}
			if err := e.feedWay(containers, way, highway); err != nil {
				return errors.Wrap(err, "Can't store way")
			}
			wayCount++
		}
		if err := scannerWays.Err(); err != nil {
			return errors.Wrap(err, "Scanner error on Ways")
		}
	}
	if e.verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n", time.Since(st), wayCount)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	if e.verbose {
		fmt.Printf("Scanning nodes... ")
	}
	st = time.Now()
	nodeCount := 0
	{
		scannerNodes, err := newScanner(e.filename, file)
		if err != nil {
			return err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			barrier := node.Tags.Find("barrier")
			err := containers.AppendNode(ExternalMemoryNode{
				NodeID:       uint64(node.ID),
				Lat:          int32(math.Round(node.Lat * coordinatePrecision)),
				Lon:          int32(math.Round(node.Lon * coordinatePrecision)),
				Barrier:      boolToByte(barrier != "" && barrier != "no"),
				TrafficLight: boolToByte(node.Tags.Find("highway") == "traffic_signals"),
			})
			if err != nil {
				return errors.Wrap(err, "Can't store node")
			}
			nodeCount++
		}
		if err := scannerNodes.Err(); err != nil {
			return errors.Wrap(err, "Scanner error on Nodes")
		}
	}
	if e.verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), nodeCount)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "Can't repeat seeking after nodes scanning")
	}

	/* Process maneuvers (turn restrictions only) */
	if e.verbose {
		fmt.Printf("Scanning maneuvers... ")
	}
	st = time.Now()
	restrictionCount := 0
	skippedRestrictions := 0
	{
		scannerRelations, err := newScanner(e.filename, file)
		if err != nil {
			return err
		}
		defer scannerRelations.Close()
		for scannerRelations.Scan() {
			obj := scannerRelations.Object()
			if obj.ObjectID().Type() != "relation" {
				continue
			}
			relation := obj.(*osm.Relation)
			tag := relation.Tags.Find("restriction")
			if tag == "" {
				continue
			}

			var fromWay, toWay, viaNode uint64
			var haveFrom, haveTo, haveVia bool
			for _, member := range relation.Members {
				switch member.Role {
				case "from":
					if member.Type == "way" {
						fromWay = uint64(member.Ref)
						haveFrom = true
					}
				case "to":
					if member.Type == "way" {
						toWay = uint64(member.Ref)
						haveTo = true
					}
				case "via":
					if member.Type == "node" {
						viaNode = uint64(member.Ref)
						haveVia = true
					}
				}
			}
			// Only via-node restrictions between two ways are supported
			if !haveFrom || !haveTo || !haveVia {
				skippedRestrictions++
				continue
			}
			err := containers.AppendRestriction(RestrictionContainer{
				FromWay: fromWay,
				ToWay:   toWay,
				Restriction: TurnRestriction{
					FromNode: specialNodeID,
					ViaNode:  viaNode,
					ToNode:   specialNodeID,
					IsOnly:   boolToByte(strings.HasPrefix(tag, "only_")),
				},
			})
			if err != nil {
				return errors.Wrap(err, "Can't store restriction")
			}
			restrictionCount++
		}
		if err := scannerRelations.Err(); err != nil {
			return errors.Wrap(err, "Scanner error on Relations")
		}
	}
	if e.verbose {
		fmt.Printf("Done in %v\n\tRestrictions: %d (skipped %d unsupported)\n", time.Since(st), restrictionCount, skippedRestrictions)
	}
	return nil
}

// feedWay splits a filtered way into per-segment edges and stores them
// together with the used node IDs and the first/last segment record
func (e *Extractor) feedWay(containers *ExtractionContainers, way *osm.Way, highway string) error {
	oneway := false
	isReversed := false
	onewayText := way.Tags.Find("oneway")
	if onewayText != "" {
		if onewayText == "yes" || onewayText == "1" {
			oneway = true
		} else if onewayText == "-1" {
			oneway = true
			isReversed = true
		}
	} else if way.Tags.Find("junction") == "roundabout" {
		oneway = true
	}
	roundabout := way.Tags.Find("junction") == "roundabout"
	accessText := way.Tags.Find("access")
	accessRestricted := accessText == "no" || accessText == "private"
	nameID := containers.InternName(way.Tags.Find("name"))

	ids := make([]uint64, len(way.Nodes))
	for i, wayNode := range way.Nodes {
		ids[i] = uint64(wayNode.ID)
	}
	if isReversed {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}

	weight := WeightData{}
	if durationText := way.Tags.Find("duration"); durationText != "" {
		if seconds, err := parseDuration(durationText); err == nil && seconds > 0 {
			weight = WeightData{Type: WEIGHT_WAY_DURATION, Value: seconds / float64(len(ids)-1)}
		} else if e.verbose {
			fmt.Printf("[WARNING]: Unhandled `duration` tag value '%s'. Way ID: '%d'\n", durationText, way.ID)
		}
	}
	if weight.Type == WEIGHT_INVALID {
		weight = WeightData{Type: WEIGHT_SPEED, Value: e.maxSpeed(way, highway)}
	}

	for _, id := range ids {
		if err := containers.AppendUsedNodeID(id); err != nil {
			return err
		}
	}

	last := len(ids) - 1
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              uint64(way.ID),
		FirstSegmentSource: ids[0],
		FirstSegmentTarget: ids[1],
		LastSegmentSource:  ids[last-1],
		LastSegmentTarget:  ids[last],
	})
	if err != nil {
		return err
	}

	for i := 1; i < len(ids); i++ {
		err := containers.AppendEdge(InternalExtractorEdge{
			Result: NodeBasedEdge{
				Source:           ids[i-1],
				Target:           ids[i],
				NameID:           nameID,
				Forward:          1,
				Backward:         boolToByte(!oneway),
				Roundabout:       boolToByte(roundabout),
				AccessRestricted: boolToByte(accessRestricted),
				TravelMode:       TravelModeDriving,
			},
			SourceLat:  math.MinInt32,
			SourceLon:  math.MinInt32,
			WeightData: weight,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// maxSpeed resolves the speed of a way in km/h: the maxspeed tag when it
// parses, otherwise the profile fallback for its highway class
func (e *Extractor) maxSpeed(way *osm.Way, highway string) float64 {
	text := way.Tags.Find("maxspeed")
	if text != "" {
		if speed, err := parseMaxSpeed(text); err == nil && speed > 0 {
			return speed
		}
		if e.verbose {
			fmt.Printf("[WARNING]: Unhandled `maxspeed` tag value '%s'. Way ID: '%d'\n", text, way.ID)
		}
	}
	if speed, ok := e.speedProfile[highway]; ok {
		return speed
	}
	return e.defaultSpeed
}

// parseMaxSpeed understands plain km/h numbers, 'X km/h' and 'X mph'
func parseMaxSpeed(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "mph") {
		value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "mph")), 64)
		if err != nil {
			return 0, err
		}
		return value * mphToKmh, nil
	}
	if strings.HasSuffix(text, "km/h") {
		return strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "km/h")), 64)
	}
	return strconv.ParseFloat(text, 64)
}

// parseDuration understands the OSM duration values 'mm', 'hh:mm' and
// 'hh:mm:ss' and returns seconds
func parseDuration(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	values := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, err
		}
		values[i] = value
	}
	switch len(values) {
	case 1:
		return values[0] * 60, nil
	case 2:
		return values[0]*3600 + values[1]*60, nil
	case 3:
		return values[0]*3600 + values[1]*60 + values[2], nil
	}
	return 0, errors.Errorf("Unhandled duration value '%s'", text)
}
