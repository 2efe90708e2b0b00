package peel

// Fixed ids and fallbacks used by Assemble.
const (
	BackgroundID      = "bg"
	FallbackElementID = "elem-01"
)

var (
	fallbackElementSize = Size{W: 200, H: 200}
	fallbackElementPos  = Vec2{X: 20, Y: 20}
)

// BBox is an element's bounding box within the source image.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ExtractElement is one labeled foreground element returned by extraction.
type ExtractElement struct {
	ID   string `json:"id"`
	PNG  []byte `json:"png"`
	BBox *BBox  `json:"bbox,omitempty"`
}

// ExtractResponse is the extraction service's output. Byte payloads travel
// as base64 strings in JSON.
type ExtractResponse struct {
	BackgroundPNG []byte           `json:"backgroundPng"`
	Elements      []ExtractElement `json:"elements"`
}

// Payload is an undecoded pixel payload awaiting storage under Ref.
type Payload struct {
	Ref  AssetRef
	Data []byte
}

// Payloads maps layer ids to their pixel payloads.
type Payloads map[string]Payload

// Assemble maps an extraction response to a two-layer scene and the pixel
// payloads for its layers. It is pure and deterministic, and tolerates any
// partial response: a missing element, id or bounding box falls back to
// FallbackElementID at (20, 20) with a 200x200 natural size. Only the first
// element is used.
//
// Panics if canvas is not positive.
func Assemble(resp ExtractResponse, canvas Size) (*Scene, Payloads) {
	if !canvas.Positive() {
		panic("peel: canvas size must be positive")
	}

	bg := NewBackgroundLayer(BackgroundID, canvas)

	var elem *ExtractElement
	if len(resp.Elements) > 0 {
		elem = &resp.Elements[0]
	}

	id := FallbackElementID
	size := fallbackElementSize
	pos := fallbackElementPos
	if elem != nil {
		if elem.ID != "" && elem.ID != BackgroundID {
			id = elem.ID
		}
		if b := elem.BBox; b != nil {
			pos = Vec2{X: b.X, Y: b.Y}
			if b.W > 0 {
				size.W = b.W
			}
			if b.H > 0 {
				size.H = b.H
			}
		}
	}
	el := NewElementLayer(id, size, pos)

	payloads := Payloads{
		bg.ID: {Ref: bg.SourceRef, Data: resp.BackgroundPNG},
	}
	if elem != nil {
		payloads[el.ID] = Payload{Ref: el.SourceRef, Data: elem.PNG}
	}

	return NewScene(canvas, bg, el), payloads
}
