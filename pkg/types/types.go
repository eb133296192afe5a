package types

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Mouth is the mouth region located by a vision model
type Mouth struct {
	Found        bool    `json:"found"`
	Confidence   float64 `json:"confidence"`
	TeethVisible bool    `json:"teeth_visible"`
	Box          Box     `json:"box"`
}

// AnalysisResult contains the complete analysis result from the vision model
type AnalysisResult struct {
	Mouth       Mouth  `json:"mouth"`
	Description string `json:"description"`
}

// OutputOptions describes how processed images are written
type OutputOptions struct {
	Format   string
	Quality  int
	Lossless bool
}
