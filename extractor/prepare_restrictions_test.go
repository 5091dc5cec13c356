package extractor

import "testing"

func newTestContainers(t *testing.T) *ExtractionContainers {
	t.Helper()
	containers := NewExtractionContainers(1<<16, t.TempDir())
	t.Cleanup(containers.Close)
	return containers
}

func appendTestRestriction(t *testing.T, c *ExtractionContainers, fromWay, viaNode, toWay uint64) {
	t.Helper()
	err := c.AppendRestriction(RestrictionContainer{
		FromWay: fromWay,
		ToWay:   toWay,
		Restriction: TurnRestriction{
			FromNode: specialNodeID,
			ViaNode:  viaNode,
			ToNode:   specialNodeID,
		},
	})
	if err != nil {
		t.Fatalf("Can't append restriction: %v", err)
	}
}

func collectRestrictions(t *testing.T, c *ExtractionContainers) []RestrictionContainer {
	t.Helper()
	restrictions := []RestrictionContainer{}
	err := c.restrictions.scan(func(record []byte) error {
		restrictions = append(restrictions, decodeRestrictionContainer(record))
		return nil
	})
	if err != nil {
		t.Fatalf("Can't scan restrictions: %v", err)
	}
	return restrictions
}

func restrictionByVia(t *testing.T, restrictions []RestrictionContainer, viaNode uint64) RestrictionContainer {
	t.Helper()
	for _, restriction := range restrictions {
		if restriction.Restriction.ViaNode == viaNode {
			return restriction
		}
	}
	t.Fatalf("No restriction with via node %d", viaNode)
	return RestrictionContainer{}
}

func TestResolveRestrictionViaOnFirstSegment(t *testing.T) {
	containers := newTestContainers(t)
	// Way 10 runs A=1 B=2 ... C=3 D=4
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	appendTestRestriction(t, containers, 10, 1, 11)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	if len(restrictions) != 1 {
		t.Fatalf("Expected 1 restriction, but got %d", len(restrictions))
	}
	if restrictions[0].Restriction.FromNode != 2 {
		t.Errorf("From node should resolve to 2, but got %d", restrictions[0].Restriction.FromNode)
	}
}

func TestResolveRestrictionViaOnLastSegment(t *testing.T) {
	containers := newTestContainers(t)
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	appendTestRestriction(t, containers, 10, 4, 11)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	if restrictions[0].Restriction.FromNode != 3 {
		t.Errorf("From node should resolve to 3, but got %d", restrictions[0].Restriction.FromNode)
	}
}

func TestResolveRestrictionBothSides(t *testing.T) {
	containers := newTestContainers(t)
	endpoints := []WayEndpoints{
		{WayID: 10, FirstSegmentSource: 1, FirstSegmentTarget: 2, LastSegmentSource: 2, LastSegmentTarget: 3},
		{WayID: 11, FirstSegmentSource: 3, FirstSegmentTarget: 4, LastSegmentSource: 4, LastSegmentTarget: 5},
	}
	for _, way := range endpoints {
		if err := containers.AppendWayEndpoints(way); err != nil {
			t.Fatalf("Can't append way endpoints: %v", err)
		}
	}
	appendTestRestriction(t, containers, 10, 3, 11)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	restriction := restrictions[0].Restriction
	if restriction.FromNode != 2 {
		t.Errorf("From node should resolve to 2, but got %d", restriction.FromNode)
	}
	if restriction.ToNode != 4 {
		t.Errorf("To node should resolve to 4, but got %d", restriction.ToNode)
	}
}

func TestResolveRestrictionSharedFromWay(t *testing.T) {
	containers := newTestContainers(t)
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	// Two restrictions leave the same way at opposite ends; both must see the
	// endpoint record
	appendTestRestriction(t, containers, 10, 1, 11)
	appendTestRestriction(t, containers, 10, 4, 12)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	if len(restrictions) != 2 {
		t.Fatalf("Expected 2 restrictions, but got %d", len(restrictions))
	}
	if got := restrictionByVia(t, restrictions, 1).Restriction.FromNode; got != 2 {
		t.Errorf("From node of the via=1 restriction should be 2, but got %d", got)
	}
	if got := restrictionByVia(t, restrictions, 4).Restriction.FromNode; got != 3 {
		t.Errorf("From node of the via=4 restriction should be 3, but got %d", got)
	}
}

func TestResolveRestrictionUnknownWayStaysUnresolved(t *testing.T) {
	containers := newTestContainers(t)
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	appendTestRestriction(t, containers, 77, 1, 78)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	restriction := restrictions[0].Restriction
	if restriction.FromNode != specialNodeID || restriction.ToNode != specialNodeID {
		t.Errorf("Restriction on unknown ways should stay unresolved, but got from=%d to=%d", restriction.FromNode, restriction.ToNode)
	}
}

func TestResolveRestrictionViaMatchesNeitherEnd(t *testing.T) {
	containers := newTestContainers(t)
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	appendTestRestriction(t, containers, 10, 99, 11)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	restrictions := collectRestrictions(t, containers)
	if restrictions[0].Restriction.FromNode != specialNodeID {
		t.Errorf("Via node matching neither end should stay unresolved, but got %d", restrictions[0].Restriction.FromNode)
	}
}

func TestResolveRestrictionsIdempotent(t *testing.T) {
	containers := newTestContainers(t)
	err := containers.AppendWayEndpoints(WayEndpoints{
		WayID:              10,
		FirstSegmentSource: 1,
		FirstSegmentTarget: 2,
		LastSegmentSource:  3,
		LastSegmentTarget:  4,
	})
	if err != nil {
		t.Fatalf("Can't append way endpoints: %v", err)
	}
	appendTestRestriction(t, containers, 10, 1, 11)
	appendTestRestriction(t, containers, 10, 4, 12)

	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions: %v", err)
	}
	first := collectRestrictions(t, containers)
	if err := containers.prepareRestrictions(); err != nil {
		t.Fatalf("Can't resolve restrictions twice: %v", err)
	}
	second := collectRestrictions(t, containers)
	if len(first) != len(second) {
		t.Fatalf("Second run changed the restriction count: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Second run changed restriction %d: %v != %v", i, first[i], second[i])
		}
	}
}
