// Package noise exposes the continuous noise primitives the generation
// pipeline samples. Implementations must be pure and reentrant: the streaming
// workers call them concurrently for different tiles.
package noise

// Field is the set of stateless noise primitives consumed by the terrain
// pipeline. All methods take world coordinates and return values independent
// of call order.
type Field interface {
	// Continental is the base heightfield in [-1, 1]; negative is below sea
	// level before biome shaping.
	Continental(x, y float64) float64

	// Feature is high-frequency surface detail in [-1, 1]; the pipeline
	// scales it by a per-biome amplitude.
	Feature(x, y float64) float64

	// River is a ridged channel field in [0, 1]; values near 1 mark river
	// courses.
	River(x, y float64) float64

	// Cave is subsurface cavity density in [0, 1].
	Cave(x, y float64) float64

	// Volcanic is cone/flow shaping in [0, 1].
	Volcanic(x, y float64) float64

	// Crater is impact depression depth in [0, 1].
	Crater(x, y float64) float64

	// Climate returns temperature and humidity, both in [0, 1].
	Climate(x, y float64) (temperature, humidity float64)
}
