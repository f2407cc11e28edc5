package layout

import "github.com/holoplot/go-evdev"

var Dvorak = newTable("dvorak", "us", "dvorak", map[evdev.EvCode]evdev.EvCode{
	evdev.KEY_MINUS: evdev.KEY_LEFTBRACE,
	evdev.KEY_EQUAL: evdev.KEY_RIGHTBRACE,

	evdev.KEY_Q:          evdev.KEY_APOSTROPHE,
	evdev.KEY_W:          evdev.KEY_COMMA,
	evdev.KEY_E:          evdev.KEY_DOT,
	evdev.KEY_R:          evdev.KEY_P,
	evdev.KEY_T:          evdev.KEY_Y,
	evdev.KEY_Y:          evdev.KEY_F,
	evdev.KEY_U:          evdev.KEY_G,
	evdev.KEY_I:          evdev.KEY_C,
	evdev.KEY_O:          evdev.KEY_R,
	evdev.KEY_P:          evdev.KEY_L,
	evdev.KEY_LEFTBRACE:  evdev.KEY_SLASH,
	evdev.KEY_RIGHTBRACE: evdev.KEY_EQUAL,

	evdev.KEY_S:          evdev.KEY_O,
	evdev.KEY_D:          evdev.KEY_E,
	evdev.KEY_F:          evdev.KEY_U,
	evdev.KEY_G:          evdev.KEY_I,
	evdev.KEY_H:          evdev.KEY_D,
	evdev.KEY_J:          evdev.KEY_H,
	evdev.KEY_K:          evdev.KEY_T,
	evdev.KEY_L:          evdev.KEY_N,
	evdev.KEY_SEMICOLON:  evdev.KEY_S,
	evdev.KEY_APOSTROPHE: evdev.KEY_MINUS,

	evdev.KEY_Z:     evdev.KEY_SEMICOLON,
	evdev.KEY_X:     evdev.KEY_Q,
	evdev.KEY_C:     evdev.KEY_J,
	evdev.KEY_V:     evdev.KEY_K,
	evdev.KEY_B:     evdev.KEY_X,
	evdev.KEY_N:     evdev.KEY_B,
	evdev.KEY_M:     evdev.KEY_M,
	evdev.KEY_COMMA: evdev.KEY_W,
	evdev.KEY_DOT:   evdev.KEY_V,
	evdev.KEY_SLASH: evdev.KEY_Z,
})

var Colemak = newTable("colemak", "us", "colemak", map[evdev.EvCode]evdev.EvCode{
	evdev.KEY_E: evdev.KEY_F,
	evdev.KEY_R: evdev.KEY_P,
	evdev.KEY_T: evdev.KEY_G,
	evdev.KEY_Y: evdev.KEY_J,
	evdev.KEY_U: evdev.KEY_L,
	evdev.KEY_I: evdev.KEY_U,
	evdev.KEY_O: evdev.KEY_Y,
	evdev.KEY_P: evdev.KEY_SEMICOLON,

	evdev.KEY_S:         evdev.KEY_R,
	evdev.KEY_D:         evdev.KEY_S,
	evdev.KEY_F:         evdev.KEY_T,
	evdev.KEY_G:         evdev.KEY_D,
	evdev.KEY_J:         evdev.KEY_N,
	evdev.KEY_K:         evdev.KEY_E,
	evdev.KEY_L:         evdev.KEY_I,
	evdev.KEY_SEMICOLON: evdev.KEY_O,

	evdev.KEY_N: evdev.KEY_K,
})
