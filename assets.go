package peel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/patrickmn/go-cache"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// ErrAssetNotFound is returned by an AssetStore that holds nothing for a ref.
var ErrAssetNotFound = errors.New("peel: asset not found")

// Asset is a resolved, renderable pixel source.
type Asset struct {
	Ref   AssetRef
	Image image.Image

	tex *ebiten.Image // uploaded lazily on first draw
}

// NewAsset wraps a decoded image.
func NewAsset(ref AssetRef, img image.Image) *Asset {
	return &Asset{Ref: ref, Image: img}
}

// PixelSize returns the decoded image dimensions.
func (a *Asset) PixelSize() Size {
	b := a.Image.Bounds()
	return Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// texture returns the GPU image for the asset, uploading it on first use.
func (a *Asset) texture() *ebiten.Image {
	if a.tex == nil {
		a.tex = ebiten.NewImageFromImage(a.Image)
	}
	return a.tex
}

// AssetTable maps layer ids to resolved pixel sources. Its lifetime is tied
// to the scene it was resolved for.
type AssetTable map[string]*Asset

// AssetStore persists encoded pixel payloads addressed by (store, key).
type AssetStore interface {
	Put(ctx context.Context, ref AssetRef, data []byte) error
	// Get returns ErrAssetNotFound (possibly wrapped) when nothing is stored.
	Get(ctx context.Context, ref AssetRef) ([]byte, error)
}

// MemoryAssetStore is an in-process AssetStore. Entries do not expire.
type MemoryAssetStore struct {
	c *cache.Cache
}

// NewMemoryAssetStore creates an empty in-process asset store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{c: cache.New(cache.NoExpiration, 0)}
}

func memoryKey(ref AssetRef) string {
	return ref.Store + "/" + ref.Key
}

// Put stores a copy of data under ref, replacing any previous payload.
func (m *MemoryAssetStore) Put(_ context.Context, ref AssetRef, data []byte) error {
	m.c.Set(memoryKey(ref), append([]byte(nil), data...), cache.NoExpiration)
	return nil
}

// Get returns the payload stored under ref.
func (m *MemoryAssetStore) Get(_ context.Context, ref AssetRef) ([]byte, error) {
	v, ok := m.c.Get(memoryKey(ref))
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrAssetNotFound, ref.Store, ref.Key)
	}
	return v.([]byte), nil
}

// Len returns the number of stored payloads.
func (m *MemoryAssetStore) Len() int {
	return m.c.ItemCount()
}

// ResolveAssets stores every payload, then resolves each layer's SourceRef
// through the store and decodes it. Layers with nothing stored are left out
// of the table and render as nothing. A payload that is present but cannot
// be decoded fails the whole resolution.
func ResolveAssets(ctx context.Context, store AssetStore, scene *Scene, payloads Payloads) (AssetTable, error) {
	for id, p := range payloads {
		if len(p.Data) == 0 {
			continue
		}
		if err := store.Put(ctx, p.Ref, p.Data); err != nil {
			return nil, fmt.Errorf("store asset %q: %w", id, err)
		}
	}

	var (
		mu    sync.Mutex
		table = make(AssetTable, scene.Len())
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, id := range scene.Layers() {
		layer, _ := scene.Layer(id)
		eg.Go(func() error {
			data, err := store.Get(egCtx, layer.SourceRef)
			if errors.Is(err, ErrAssetNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load asset %q: %w", id, err)
			}
			img, err := decodeImage(data)
			if err != nil {
				return fmt.Errorf("decode asset %q: %w", id, err)
			}
			mu.Lock()
			table[id] = NewAsset(layer.SourceRef, img)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

// decodeImage decodes PNG, JPEG or WebP data.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}
