package common

// Virtual key codes for the keyboard controls.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // W key (ASCII), zoom in
	KeyA = 65 // A key (ASCII), orbit left
	KeyS = 83 // S key (ASCII), zoom out
	KeyD = 68 // D key (ASCII), orbit right
	KeyQ = 81 // Q key (ASCII), orbit up
	KeyE = 69 // E key (ASCII), orbit down
	KeyT = 84 // T key (ASCII), next primitive topology

	// Key1 through Key4 select the number of active agent families.
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
)
