package terrain

// Biome is the dominant surface classification of a cell, stored per cell in
// TileData.BiomeMap.
type Biome byte

const (
	BiomeOcean Biome = iota
	BiomeTundra
	BiomeAlpine
	BiomeForest
	BiomeGrassland
	BiomeSavanna
	BiomeDesert
	BiomeRainforest
)

var biomeNames = [...]string{
	"ocean", "tundra", "alpine", "forest", "grassland", "savanna", "desert", "rainforest",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "unknown"
}

// humidityThreshold splits each temperature band into its wet and dry biome.
const humidityThreshold = 0.5

// ClassifyBiome picks the dominant biome from climate and altitude. Anything
// below sea level is ocean; land is bucketed by temperature and split by
// humidity within each bucket.
func ClassifyBiome(temperature, humidity, altitude, seaLevel float32) Biome {
	if altitude < seaLevel {
		return BiomeOcean
	}

	wet := humidity >= humidityThreshold
	switch {
	case temperature < 0.25: // frigid
		if wet {
			return BiomeTundra
		}
		return BiomeAlpine
	case temperature < 0.5: // temperate
		if wet {
			return BiomeForest
		}
		return BiomeGrassland
	case temperature < 0.75: // warm
		if wet {
			return BiomeSavanna
		}
		return BiomeDesert
	default: // hot
		if wet {
			return BiomeRainforest
		}
		return BiomeDesert
	}
}

// featureAmplitude is the per-biome scale applied to the feature noise layer,
// in world height units.
func featureAmplitude(b Biome) float32 {
	switch b {
	case BiomeOcean:
		return 0.5
	case BiomeTundra, BiomeGrassland:
		return 1.5
	case BiomeAlpine:
		return 6
	case BiomeForest, BiomeSavanna:
		return 2.5
	case BiomeDesert:
		return 3 // dunes
	case BiomeRainforest:
		return 2
	default:
		return 1
	}
}
