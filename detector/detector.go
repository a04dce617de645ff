// Package detector turns camera frames into raw per-frame smile scores.
// Smoothing and dropout handling live in the smile package; this layer only
// answers "how happy does the face in this frame look".
package detector

// Detector yields one raw happiness probability per polling cycle.
// ok=false means no face this frame; transient camera errors read the same
// way so the control loop never has to care which it was.
type Detector interface {
	Start() error
	RawScore() (raw float64, ok bool)
	Close() error
}

// Config locates the camera and the model files.
type Config struct {
	CameraIndex int
	CascadeFile string
	ModelFile   string
	InputSize   int
	MinFaceSize int
}

func DefaultConfig() Config {
	return Config{
		CascadeFile: "models/haarcascade_frontalface_default.xml",
		ModelFile:   "models/emotion.onnx",
		InputSize:   260,
		MinFaceSize: 100,
	}
}
