package webphoto

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/esimov/webphoto/imop"
	"github.com/esimov/webphoto/utils"
)

// Layer is a named, independently paintable surface.
type Layer struct {
	ID      int
	Name    string
	Visible bool
	Opacity float64
	Mode    imop.Mode

	surface *Surface
}

// Surface returns the pixels owned by the layer.
func (l *Layer) Surface() *Surface {
	return l.surface
}

// LayerStack is the ordered collection of layers. Index 0 is the bottom.
// All layers share the stack dimensions.
type LayerStack struct {
	width, height int

	layers  []*Layer
	active  int
	counter int
}

// NewLayerStack returns a stack holding a single "Background" layer filled with bg.
func NewLayerStack(width, height int, bg color.NRGBA) (*LayerStack, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	s := &LayerStack{width: width, height: height}
	s.Reset(bg)
	return s, nil
}

// Reset drops every layer and starts over with a fresh background layer.
func (s *LayerStack) Reset(bg color.NRGBA) {
	s.layers = nil
	s.active = 0
	s.counter = 0
	s.AddLayer("Background").surface.Fill(bg, nil)
}

// Width returns the canvas width.
func (s *LayerStack) Width() int { return s.width }

// Height returns the canvas height.
func (s *LayerStack) Height() int { return s.height }

// Len returns the number of layers.
func (s *LayerStack) Len() int { return len(s.layers) }

// Layers returns the layers bottom to top. The slice is a copy; the layers are not.
func (s *LayerStack) Layers() []*Layer {
	return append([]*Layer(nil), s.layers...)
}

// AddLayer pushes a transparent layer on top of the stack and activates it.
// An empty name yields "Layer N".
func (s *LayerStack) AddLayer(name string) *Layer {
	s.counter++
	if name == "" {
		name = fmt.Sprintf("Layer %d", s.counter)
	}
	l := &Layer{
		ID:      s.counter,
		Name:    name,
		Visible: true,
		Opacity: 1,
		Mode:    imop.Normal,
		surface: NewSurface(s.width, s.height),
	}
	s.layers = append(s.layers, l)
	s.active = l.ID
	return l
}

// Layer looks up a layer by id.
func (s *LayerStack) Layer(id int) (*Layer, bool) {
	if i := s.index(id); i >= 0 {
		return s.layers[i], true
	}
	return nil, false
}

// Active returns the active layer, or nil when the stack is empty.
func (s *LayerStack) Active() *Layer {
	l, _ := s.Layer(s.active)
	return l
}

// SetActive makes the layer with the given id the write target.
func (s *LayerStack) SetActive(id int) error {
	if s.index(id) < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	s.active = id
	return nil
}

// RemoveLayer deletes a layer. The last remaining layer cannot be removed.
// Removing the active layer activates the layer right below it, or the one
// above when it was the bottom layer.
func (s *LayerStack) RemoveLayer(id int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	if len(s.layers) <= 1 {
		return ErrLastLayer
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	if s.active == id {
		s.active = s.layers[utils.Max(0, i-1)].ID
	}
	return nil
}

// MoveLayer swaps a layer with its neighbour: dir > 0 moves it up, dir < 0 down.
// Moving past either end is a no-op.
func (s *LayerStack) MoveLayer(id, dir int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	j := i
	switch {
	case dir > 0:
		j++
	case dir < 0:
		j--
	}
	if j < 0 || j >= len(s.layers) {
		return nil
	}
	s.layers[i], s.layers[j] = s.layers[j], s.layers[i]
	return nil
}

// ToggleVisibility flips the visibility flag of a layer.
func (s *LayerStack) ToggleVisibility(id int) error {
	l, ok := s.Layer(id)
	if !ok {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	l.Visible = !l.Visible
	return nil
}

// SetOpacity sets the layer opacity, clamped to [0, 1].
func (s *LayerStack) SetOpacity(id int, opacity float64) error {
	l, ok := s.Layer(id)
	if !ok {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	l.Opacity = utils.Clamp(opacity, 0, 1)
	return nil
}

// SetBlendMode sets the mode used to composite the layer.
func (s *LayerStack) SetBlendMode(id int, mode imop.Mode) error {
	l, ok := s.Layer(id)
	if !ok {
		return fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	if err := imop.NewBlend().Set(mode); err != nil {
		return err
	}
	l.Mode = mode
	return nil
}

// Resize changes the canvas size of every layer. Content stays anchored at the origin.
func (s *LayerStack) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	for _, l := range s.layers {
		l.surface.Resize(width, height)
	}
	s.width, s.height = width, height
	return nil
}

// Rescale resamples the content of every layer to the new canvas size.
func (s *LayerStack) Rescale(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	for _, l := range s.layers {
		l.surface.Replace(imaging.Resize(l.surface.Image(), width, height, imaging.Lanczos))
	}
	s.width, s.height = width, height
	return nil
}

// Composite flattens the visible layers bottom to top into a new image.
func (s *LayerStack) Composite() *image.NRGBA {
	dst := NewSurface(s.width, s.height)
	for _, l := range s.layers {
		if !l.Visible || l.Opacity <= 0 {
			continue
		}
		l.surface.CompositeOnto(dst, l.Opacity, l.Mode)
	}
	return dst.Image()
}

func (s *LayerStack) index(id int) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}
