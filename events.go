package webphoto

// Event is anything the session queue carries to the engine.
type Event interface {
	event()
}

// Button identifies the pointer button. It selects the primary or secondary color.
type Button int

const (
	Primary Button = iota
	Secondary
)

// PointerDown opens a gesture, or performs a click tool action.
type PointerDown struct {
	Point  Point
	Button Button
}

// PointerMove advances an open gesture.
type PointerMove struct {
	Point Point
}

// PointerUp closes the open gesture.
type PointerUp struct {
	Point Point
}

// PointerLeave is sent when the pointer leaves the canvas. With Released set
// it closes the gesture like PointerUp.
type PointerLeave struct {
	Point    Point
	Released bool
}

// Tick is a scheduler pulse for continuous brushes.
type Tick struct {
	Handle TickHandle
}

// ToolSwitch closes any open gesture and selects another tool.
type ToolSwitch struct {
	Tool Tool
}

// Undo restores the previous snapshot.
type Undo struct{}

// Redo restores the next snapshot.
type Redo struct{}

// EditEvent applies a discrete edit as one history step.
type EditEvent struct {
	Edit Edit
}

// call runs fn on the session goroutine and reports its error.
type call struct {
	fn   func(*Engine) error
	errc chan error
}

// barrier is acknowledged once every event queued before it is processed.
type barrier struct {
	errc chan error
}

func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}
func (PointerLeave) event() {}
func (Tick) event()         {}
func (ToolSwitch) event()   {}
func (Undo) event()         {}
func (Redo) event()         {}
func (EditEvent) event()    {}
func (call) event()         {}
func (barrier) event()      {}
