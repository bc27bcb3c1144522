// Package tilemap holds the level's tile grid, per-tile attribute
// bitset, and the AABB-vs-tile collision rules actors and the player
// are driven through.
package tilemap

// Attribute is a bitset of per-tile collision/behavior flags, matching
// the original game's tile attribute layout bit-for-bit so authored
// level data needs no reinterpretation.
type Attribute uint16

const (
	SolidTop      Attribute = 0x1
	SolidBottom   Attribute = 0x2
	SolidRight    Attribute = 0x4
	SolidLeft     Attribute = 0x8
	Animated      Attribute = 0x10
	Foreground    Attribute = 0x20
	Flammable     Attribute = 0x40
	Climbable     Attribute = 0x80
	ConveyorLeft  Attribute = 0x100
	ConveyorRight Attribute = 0x200
	SlowAnimation Attribute = 0x400
	Ladder        Attribute = 0x4000
)

// Direction identifies one of the four cardinal movement directions
// used when resolving collisions.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Map is a rectangular grid of tile indices plus the attribute table
// those indices look up into.
type Map struct {
	WidthTiles  int
	HeightTiles int
	TileSizePx  int

	tiles      []uint16
	attributes []Attribute // indexed by tile index, not by position
}

// New creates a Map of the given dimensions, all tiles initialized to
// index 0 (the designated "empty" tile).
func New(widthTiles, heightTiles, tileSizePx int, attributeTable []Attribute) *Map {
	return &Map{
		WidthTiles:  widthTiles,
		HeightTiles: heightTiles,
		TileSizePx:  tileSizePx,
		tiles:       make([]uint16, widthTiles*heightTiles),
		attributes:  attributeTable,
	}
}

func (m *Map) inBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < m.WidthTiles && ty < m.HeightTiles
}

// TileAt returns the tile index at tile coordinates (tx, ty). Out of
// bounds returns 0.
func (m *Map) TileAt(tx, ty int) uint16 {
	if !m.inBounds(tx, ty) {
		return 0
	}
	return m.tiles[ty*m.WidthTiles+tx]
}

// Attributes returns the attribute bitset for a tile index. An index
// past the end of the attribute table has no attributes.
func (m *Map) Attributes(tileIndex uint16) Attribute {
	if int(tileIndex) >= len(m.attributes) {
		return 0
	}
	return m.attributes[tileIndex]
}

// AttributesAt is a convenience combining TileAt and Attributes.
func (m *Map) AttributesAt(tx, ty int) Attribute {
	return m.Attributes(m.TileAt(tx, ty))
}

// SetTile writes a single tile index at tile coordinates (tx, ty). A
// coordinate outside the map bounds is a no-op.
func (m *Map) SetTile(index uint16, tx, ty int) {
	if !m.inBounds(tx, ty) {
		return
	}
	m.tiles[ty*m.WidthTiles+tx] = index
}

// MoveSection shifts the axis-aligned block of tiles described by
// (left,top,right,bottom) by distance tiles horizontally (positive is
// rightward), clearing the vacated cells to 0. Used by sliding doors,
// destructible geometry, and conveyor animation strips.
func (m *Map) MoveSection(left, top, right, bottom, distance int) {
	if distance == 0 {
		return
	}

	width := right - left + 1
	row := make([]uint16, width)

	for ty := top; ty <= bottom; ty++ {
		for i := 0; i < width; i++ {
			row[i] = m.TileAt(left+i, ty)
		}
		for i := 0; i < width; i++ {
			m.SetTile(0, left+i, ty)
		}
		for i := 0; i < width; i++ {
			m.SetTile(row[i], left+i+distance, ty)
		}
	}
}

// AABB is an axis-aligned bounding box in pixel coordinates.
type AABB struct {
	X, Y          float64
	Width, Height float64
}

// requiredBitFor returns the SOLID_* bit that must be set on a tile for
// it to block motion arriving from the given direction (a tile with
// SOLID_TOP blocks something moving downward into its top edge, etc.).
func requiredBitFor(dir Direction) Attribute {
	switch dir {
	case DirDown:
		return SolidTop
	case DirUp:
		return SolidBottom
	case DirRight:
		return SolidLeft
	case DirLeft:
		return SolidRight
	default:
		return 0
	}
}

// Collides reports whether moving box one pixel in direction dir would
// cross a tile solid against that direction. Horizontal motion is tested before vertical, matching the
// tie-break order the simulation applies within a tick.
func (m *Map) Collides(box AABB, dir Direction) bool {
	bit := requiredBitFor(dir)
	if bit == 0 {
		return false
	}

	left := int(box.X) / m.TileSizePx
	right := int(box.X+box.Width-1) / m.TileSizePx
	top := int(box.Y) / m.TileSizePx
	bottom := int(box.Y+box.Height-1) / m.TileSizePx

	var tx0, tx1, ty0, ty1 int
	switch dir {
	case DirDown:
		tx0, tx1 = left, right
		ty0 = int(box.Y+box.Height) / m.TileSizePx
		ty1 = ty0
	case DirUp:
		tx0, tx1 = left, right
		ty0 = int(box.Y-1) / m.TileSizePx
		ty1 = ty0
	case DirRight:
		ty0, ty1 = top, bottom
		tx0 = int(box.X+box.Width) / m.TileSizePx
		tx1 = tx0
	case DirLeft:
		ty0, ty1 = top, bottom
		tx0 = int(box.X-1) / m.TileSizePx
		tx1 = tx0
	}

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			if m.AttributesAt(tx, ty)&bit != 0 {
				return true
			}
		}
	}
	return false
}

// gravitySequence is the ramped fall-speed progression: a new fall
// starts slow and accelerates, saturating at a maximum per-tick
// distance, and resets to 0 on landing.
var gravitySequence = []int{0, 0, 1, 1, 2, 2, 2, 2, 3, 3}

// MaxGravityState is the highest index into gravitySequence; callers
// should stop advancing past it.
const MaxGravityState = 9

// FallDistance returns the per-tick fall distance in pixels for a given
// gravityState, saturating at the sequence's final value once the
// state exceeds MaxGravityState.
func FallDistance(gravityState int) int {
	if gravityState < 0 {
		gravityState = 0
	}
	if gravityState > MaxGravityState {
		gravityState = MaxGravityState
	}
	return gravitySequence[gravityState]
}

// ConveyorDrift returns the horizontal drift in pixels/tick an actor
// standing on this attribute set should receive: +1 for CONVEYOR_R,
// -1 for CONVEYOR_L, 0 otherwise.
func ConveyorDrift(attrs Attribute) int {
	switch {
	case attrs&ConveyorRight != 0:
		return 1
	case attrs&ConveyorLeft != 0:
		return -1
	default:
		return 0
	}
}

// CanStairStep reports whether an actor with allowStairStepping set may
// traverse a single-tile-high step without it blocking horizontal
// motion. stepHeightPx is the height difference between the actor's
// current footing and the tile ahead.
func CanStairStep(allowStairStepping bool, stepHeightPx, tileSizePx int) bool {
	return allowStairStepping && stepHeightPx > 0 && stepHeightPx <= tileSizePx
}
