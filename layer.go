package peel

// Asset store identifiers and content types used by the assembly pipeline.
const (
	DefaultAssetStore = "idb"
	MIMEPNG           = "image/png"
)

// AssetRef points at pixel data held by an asset store. Scenes carry refs,
// never pixel bytes.
type AssetRef struct {
	Store string // identifier of the backing asset store
	Key   string // handle unique within Store
	MIME  string // content type
}

// Layer is one image element within a scene.
type Layer struct {
	ID          string
	Kind        LayerKind
	Name        string
	SourceRef   AssetRef
	NaturalSize Size // untransformed image dimensions in pixels
	Transform   Transform
	Locked      bool
}

// NewBackgroundLayer returns the locked, identity-transformed background
// layer covering the whole canvas.
func NewBackgroundLayer(id string, canvas Size) Layer {
	return Layer{
		ID:          id,
		Kind:        KindBackground,
		Name:        "Background",
		SourceRef:   AssetRef{Store: DefaultAssetStore, Key: id, MIME: MIMEPNG},
		NaturalSize: canvas,
		Transform:   IdentityTransform,
		Locked:      true,
	}
}

// NewElementLayer returns an unlocked element layer of the given natural
// size, translated to pos.
func NewElementLayer(id string, size Size, pos Vec2) Layer {
	return Layer{
		ID:          id,
		Kind:        KindElement,
		Name:        id,
		SourceRef:   AssetRef{Store: DefaultAssetStore, Key: id, MIME: MIMEPNG},
		NaturalSize: size,
		Transform:   Translated(pos.X, pos.Y),
	}
}
