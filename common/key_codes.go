package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

// MouseButton identifies a pointer button. Values match glfw.MouseButton.
type MouseButton int

const (
	// MouseButtonPrimary is the left mouse button.
	MouseButtonPrimary MouseButton = 0
	// MouseButtonSecondary is the right mouse button.
	MouseButtonSecondary MouseButton = 1
	// MouseButtonMiddle is the middle mouse button / wheel click.
	MouseButtonMiddle MouseButton = 2
)
