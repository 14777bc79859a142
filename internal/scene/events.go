package scene

import "defectpaste/pkg/geometry"

// Tool identifies which gesture the pointer currently drives.
type Tool int

const (
	ToolTransform Tool = iota // drag placements
	ToolSelect                // trace a region extraction
	ToolPaint                 // brush strokes on the paint layer
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPaint:
		return "paint"
	default:
		return "transform"
	}
}

// PointerEvent is one sample of pointer state in canvas coordinates.
type PointerEvent struct {
	X, Y    float64
	Pressed bool
}

// Dispatcher routes pointer input to the active tool. It owns the tool mode,
// the selection tool, and the brush settings for one scene.
type Dispatcher struct {
	scene *Scene
	sel   *SelectionTool

	tool  Tool
	brush Brush

	painting  bool
	lastPaint geometry.Point2D
}

// NewDispatcher wires a dispatcher to a scene with transform mode active and
// a default brush.
func NewDispatcher(s *Scene) *Dispatcher {
	return &Dispatcher{
		scene: s,
		sel:   NewSelectionTool(),
		brush: DefaultBrush(),
	}
}

// Scene returns the dispatched scene.
func (d *Dispatcher) Scene() *Scene { return d.scene }

// Selection returns the region selection tool.
func (d *Dispatcher) Selection() *SelectionTool { return d.sel }

// Tool returns the active tool.
func (d *Dispatcher) Tool() Tool { return d.tool }

// SetTool switches tools, ending any gesture the old tool had in progress.
func (d *Dispatcher) SetTool(t Tool) {
	if d.tool == t {
		return
	}
	d.sel.Cancel()
	d.painting = false
	d.tool = t
	if t == ToolSelect {
		d.sel.Arm()
	} else {
		d.sel.Disarm()
	}
}

// Brush returns the current brush settings.
func (d *Dispatcher) Brush() Brush { return d.brush }

// SetBrush replaces the brush settings used by paint mode.
func (d *Dispatcher) SetBrush(b Brush) { d.brush = b }

// PointerDown begins a gesture with the active tool.
func (d *Dispatcher) PointerDown(x, y float64) {
	switch d.tool {
	case ToolSelect:
		d.sel.Begin(x, y)
	case ToolPaint:
		d.painting = true
		d.lastPaint = geometry.Point2D{X: x, Y: y}
		d.scene.Paint().StampAt(d.brush, x, y)
	default:
		d.scene.PointerDown(x, y)
	}
}

// PointerMove continues the gesture in progress, if any.
func (d *Dispatcher) PointerMove(x, y float64) {
	switch d.tool {
	case ToolSelect:
		d.sel.Update(x, y)
	case ToolPaint:
		if !d.painting {
			return
		}
		to := geometry.Point2D{X: x, Y: y}
		d.scene.Paint().StrokeTo(d.brush, d.lastPaint, to)
		d.lastPaint = to
	default:
		d.scene.PointerMove(x, y)
	}
}

// PointerUp ends the gesture. In select mode a committed extraction switches
// back to transform mode so the new placement can be dragged immediately.
func (d *Dispatcher) PointerUp(x, y float64) error {
	switch d.tool {
	case ToolSelect:
		d.sel.Update(x, y)
		p, err := d.sel.Commit(d.scene)
		if err != nil {
			return err
		}
		if p != nil {
			d.tool = ToolTransform
		}
		return nil
	case ToolPaint:
		d.painting = false
		return nil
	default:
		d.scene.PointerUp(x, y)
		return nil
	}
}

// Handle applies one pointer sample, inferring down/move/up transitions from
// the pressed flag.
func (d *Dispatcher) Handle(prev, cur PointerEvent) error {
	switch {
	case cur.Pressed && !prev.Pressed:
		d.PointerDown(cur.X, cur.Y)
	case cur.Pressed && prev.Pressed:
		d.PointerMove(cur.X, cur.Y)
	case !cur.Pressed && prev.Pressed:
		return d.PointerUp(cur.X, cur.Y)
	}
	return nil
}
