package fingerprint

// Weights holds the top-level facet weights for similarity blending.
type Weights struct {
	Text      float64 `yaml:"text" json:"text"`
	Position  float64 `yaml:"position" json:"position"`
	Structure float64 `yaml:"structure" json:"structure"`
	Attribute float64 `yaml:"attribute" json:"attribute"`
}

// Config holds every tunable of fingerprint generation and matching. The
// defaults are policy, not algorithmic invariants; override per deployment.
type Config struct {
	// Generation gates. Each facet is independently optional.
	EnableText       bool `yaml:"enableText" json:"enableText"`
	EnableClassChain bool `yaml:"enableClassChain" json:"enableClassChain"`
	EnablePosition   bool `yaml:"enablePosition" json:"enablePosition"`
	EnableAttributes bool `yaml:"enableAttributes" json:"enableAttributes"`

	// ContextDepth is how many ancestors the class chain walks.
	ContextDepth int `yaml:"contextDepth" json:"contextDepth"`

	// Facet weights.
	Weights Weights `yaml:"weights" json:"weights"`

	// TextSimilarityThreshold is the minimum Levenshtein-based similarity
	// that earns near-exact text credit.
	TextSimilarityThreshold float64 `yaml:"textSimilarityThreshold" json:"textSimilarityThreshold"`

	// Position tolerances in normalized screen space.
	PositionTolerance float64 `yaml:"positionTolerance" json:"positionTolerance"`
	AreaTolerance     float64 `yaml:"areaTolerance" json:"areaTolerance"`

	// Confidence model: base plus additive boosts, capped at 1.0.
	BaseConfidence      float64 `yaml:"baseConfidence" json:"baseConfidence"`
	TextBoost           float64 `yaml:"textBoost" json:"textBoost"`
	ResourceIDBoost     float64 `yaml:"resourceIdBoost" json:"resourceIdBoost"`
	PositionBoost       float64 `yaml:"positionBoost" json:"positionBoost"`
	StructureBoost      float64 `yaml:"structureBoost" json:"structureBoost"`
	HighConfidenceFloor float64 `yaml:"highConfidenceFloor" json:"highConfidenceFloor"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		EnableText:       true,
		EnableClassChain: true,
		EnablePosition:   true,
		EnableAttributes: true,
		ContextDepth:     2,
		Weights: Weights{
			Text:      0.30,
			Position:  0.25,
			Structure: 0.30,
			Attribute: 0.15,
		},
		TextSimilarityThreshold: 0.8,
		PositionTolerance:       0.05,
		AreaTolerance:           0.10,
		BaseConfidence:          0.5,
		TextBoost:               0.30,
		ResourceIDBoost:         0.25,
		PositionBoost:           0.15,
		StructureBoost:          0.10,
		HighConfidenceFloor:     0.8,
	}
}

// Structure sub-weights. These normalize by the sum actually applicable, so
// they are fixed relative proportions rather than exposed tunables.
const (
	chainWeight        = 0.4
	resourceIDWeight   = 0.3
	ridSuffixWeight    = 0.2
	parentClassWeight  = 0.15
	siblingIndexWeight = 0.15
)
