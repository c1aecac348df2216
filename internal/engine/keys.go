package engine

// Linux evdev key codes excluded from counting: navigation, deletion, and
// other non-authoring keys. Typing one of these is not "writing".
const (
	keyEsc       = 1
	keyBackspace = 14
	keyTab       = 15
	keyEnter     = 28
	keyKPEnter   = 96
	keyHome      = 102
	keyUp        = 103
	keyPageUp    = 104
	keyLeft      = 105
	keyRight     = 106
	keyEnd       = 107
	keyDown      = 108
	keyPageDown  = 109
	keyDelete    = 111
)

var ignoredKeys = buildIgnoredKeys()

func buildIgnoredKeys() map[int]bool {
	ignored := map[int]bool{
		keyEsc:       true,
		keyBackspace: true,
		keyTab:       true,
		keyEnter:     true,
		keyKPEnter:   true,
		keyHome:      true,
		keyUp:        true,
		keyPageUp:    true,
		keyLeft:      true,
		keyRight:     true,
		keyEnd:       true,
		keyDown:      true,
		keyPageDown:  true,
		keyDelete:    true,
	}
	for code := 59; code <= 68; code++ { // F1-F10
		ignored[code] = true
	}
	ignored[87] = true // F11
	ignored[88] = true // F12
	return ignored
}

// IgnoredKey reports whether a key code is excluded from counting.
func IgnoredKey(code int) bool {
	return ignoredKeys[code]
}
