package tilemap

import "testing"

func newTestMap() *Map {
	attrs := make([]Attribute, 4)
	attrs[1] = SolidTop | SolidBottom | SolidLeft | SolidRight
	attrs[2] = ConveyorRight
	attrs[3] = Ladder | Climbable
	m := New(10, 10, 16, attrs)
	m.SetTile(1, 5, 6) // solid block at tile (5,6)
	return m
}

func TestTileAtOutOfBoundsReturnsZero(t *testing.T) {
	m := newTestMap()
	if got := m.TileAt(-1, 0); got != 0 {
		t.Errorf("TileAt(-1,0) = %d, want 0", got)
	}
	if got := m.TileAt(100, 100); got != 0 {
		t.Errorf("TileAt(100,100) = %d, want 0", got)
	}
}

func TestCollidesDownIntoSolidTop(t *testing.T) {
	m := newTestMap()
	// box sitting directly above the solid tile at (5,6), tile size 16
	box := AABB{X: 5 * 16, Y: 6*16 - 16, Width: 16, Height: 16}
	if !m.Collides(box, DirDown) {
		t.Error("expected collision moving down into SOLID_TOP tile")
	}
}

func TestCollidesUpNoCollisionWhenClear(t *testing.T) {
	m := newTestMap()
	box := AABB{X: 0, Y: 32, Width: 16, Height: 16}
	if m.Collides(box, DirUp) {
		t.Error("expected no collision moving up through empty tiles")
	}
}

func TestSetTileAndMoveSection(t *testing.T) {
	m := newTestMap()
	m.SetTile(2, 0, 0)
	m.SetTile(2, 1, 0)
	m.MoveSection(0, 0, 1, 0, 2)

	if got := m.TileAt(0, 0); got != 0 {
		t.Errorf("vacated source tile (0,0) = %d, want 0", got)
	}
	if got := m.TileAt(2, 0); got != 2 {
		t.Errorf("shifted tile (2,0) = %d, want 2", got)
	}
	if got := m.TileAt(3, 0); got != 2 {
		t.Errorf("shifted tile (3,0) = %d, want 2", got)
	}
}

func TestFallDistanceRampsAndSaturates(t *testing.T) {
	if d := FallDistance(0); d != 0 {
		t.Errorf("FallDistance(0) = %d, want 0", d)
	}
	if d := FallDistance(MaxGravityState); d != 3 {
		t.Errorf("FallDistance(max) = %d, want 3", d)
	}
	if d := FallDistance(MaxGravityState + 50); d != 3 {
		t.Errorf("FallDistance beyond max should saturate at 3, got %d", d)
	}
}

func TestConveyorDrift(t *testing.T) {
	if d := ConveyorDrift(ConveyorRight); d != 1 {
		t.Errorf("ConveyorDrift(right) = %d, want 1", d)
	}
	if d := ConveyorDrift(ConveyorLeft); d != -1 {
		t.Errorf("ConveyorDrift(left) = %d, want -1", d)
	}
	if d := ConveyorDrift(0); d != 0 {
		t.Errorf("ConveyorDrift(none) = %d, want 0", d)
	}
}
