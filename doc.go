// Package peel is the scene composition engine behind the BananaPeel image
// splitter, built on [Ebitengine].
//
// An imported image is sent to an extraction service, which returns a
// background image and one or more labeled element images with bounding
// boxes. [Assemble] turns that response into an immutable [Scene]: a locked
// background layer plus a movable element layer. A [Store] holds the current
// scene, its [AssetTable] and the selected layer id, and notifies subscribers
// synchronously on every mutation. A [Renderer] projects store state into a
// composited canvas, hit-tests pointer input and dispatches selection and
// transform intents back into the store.
//
// # Quick start
//
//	store := peel.NewStore()
//	importer := peel.NewImporter(store, peel.MockExtractor{}, peel.ImporterOptions{
//		CanvasSize: peel.Size{W: 800, H: 600},
//	})
//	app := peel.NewApp(store, importer, peel.AppOptions{})
//	if err := peel.Run(app, peel.RunConfig{Title: "BananaPeel", Width: 960, Height: 720}); err != nil {
//		log.Fatal(err)
//	}
//
// # Scene model
//
// Layers are painted back-to-front in [Scene.Layers] order; index 0 is the
// background. Each layer carries a [Transform]: translation in canvas pixels,
// rotation in degrees and anisotropic scale, both applied about an anchor
// expressed as a fraction of the layer's natural size.
//
// The scene never embeds pixel bytes. Layers reference pixels through an
// [AssetRef], resolved by an [AssetStore] into the store's asset table.
//
// [Ebitengine]: https://ebitengine.org
package peel
