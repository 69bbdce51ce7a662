package components

// CameraComponent marks the entity the player looks through
type CameraComponent struct{}

// GoalComponent marks the tile that ends the level
type GoalComponent struct{}

// CollidableComponent lets an object block movement while Active
// Collision radius comes from the LocationComponent scale
type CollidableComponent struct {
	Active bool
}

// DoorComponent is a door opened by the key one case-step above its letter
type DoorComponent struct {
	Letter rune
}

// KeyComponent is a collectable key
type KeyComponent struct {
	Letter rune
	Held   bool // Carried by the player
}

// caseOffset is the distance between an upper-case letter and its lower-case form
const caseOffset = 'a' - 'A'

// Opens reports whether the key fits the door
// Subtraction wraps, so a key letter below the door letter never matches
func (k KeyComponent) Opens(d DoorComponent) bool {
	return uint32(k.Letter)-uint32(d.Letter) == caseOffset
}

// DoorLetterFor returns the door letter a key letter opens
func DoorLetterFor(key rune) rune {
	return key - caseOffset
}
