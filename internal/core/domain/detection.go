package domain

// Detection is a single bounding box reported by the detection model.
type Detection struct {
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
}

// RawDetectionResult is the payload returned by the remote detector.
type RawDetectionResult struct {
	Detections          []Detection `json:"detections"`
	ImageSize           []int       `json:"image_size,omitempty"`
	ProcessingTime      float64     `json:"processing_time,omitempty"`
	ModelInfo           string      `json:"model_info,omitempty"`
	AnnotatedImage      string      `json:"annotated_image,omitempty"`
	ObstructionAnalysis *struct {
		Confidence float64 `json:"confidence"`
	} `json:"obstruction_analysis,omitempty"`
}

// Obstruction classes.
const (
	ClassPerson = "person"
	ClassAnimal = "animal"
	ClassObject = "object"
)

// Severity levels.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Path status values.
const (
	PathClear   = "CLEAR"
	PathCaution = "CAUTION"
	PathBlocked = "BLOCKED"
)

// Recommended actions.
const (
	ActionProceed            = "PROCEED"
	ActionProceedWithCaution = "PROCEED_WITH_CAUTION"
	ActionStopAndWait        = "STOP_AND_WAIT"
)

// ObstructionAnalysis summarizes what blocks the vehicle's path.
type ObstructionAnalysis struct {
	HasObstruction   bool    `json:"has_obstruction"`
	ObstructionCount int     `json:"obstruction_count"`
	AnimalCount      int     `json:"animal_count"`
	ObjectCount      int     `json:"object_count"`
	PersonCount      int     `json:"person_count"`
	Severity         string  `json:"severity"`
	Confidence       float64 `json:"confidence"`
	StatusMessage    string  `json:"status_message"`
}

// Navigation is the navigation-safety verdict derived from the analysis.
type Navigation struct {
	CanProceed        bool   `json:"can_proceed"`
	RecommendedAction string `json:"recommended_action"`
	PathStatus        string `json:"path_status"`
	SafetyScore       int    `json:"safety_score"`
}

// DetectionResult is the obstruction report returned to clients.
type DetectionResult struct {
	Detections          []Detection         `json:"detections"`
	ImageSize           [2]int              `json:"image_size"`
	ProcessingTime      float64             `json:"processing_time"`
	ModelInfo           string              `json:"model_info"`
	AnnotatedImage      string              `json:"annotated_image,omitempty"`
	ObstructionAnalysis ObstructionAnalysis `json:"obstruction_analysis"`
	Navigation          Navigation          `json:"navigation"`
	Demo                bool                `json:"demo,omitempty"`
}
