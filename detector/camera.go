package detector

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// happinessIdx is the happiness class in the HSEmotion output vector.
const happinessIdx = 3

// ImageNet normalization folded into the blob: per-channel mean subtraction
// with a single-std scale approximation, which is what the DNN blob API can
// express.
const normScale = 1.0 / (0.226 * 255.0)

var imagenetMean = gocv.NewScalar(0.485*255, 0.456*255, 0.406*255, 0)

const (
	frameWidth  = 640
	frameHeight = 480
	frameRate   = 30
)

// Camera reads frames from a webcam, localizes a face with a Haar cascade
// and scores it with an ONNX emotion net. One frame per RawScore call.
type Camera struct {
	cfg Config

	mu      sync.Mutex
	cap     *gocv.VideoCapture
	cascade gocv.CascadeClassifier
	net     gocv.Net
	started bool
}

func NewCamera(cfg Config) *Camera {
	return &Camera{cfg: cfg}
}

func (c *Camera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	if _, err := os.Stat(c.cfg.ModelFile); err != nil {
		return fmt.Errorf("emotion model: %w", err)
	}
	if _, err := os.Stat(c.cfg.CascadeFile); err != nil {
		return fmt.Errorf("face cascade: %w", err)
	}

	webcam, err := gocv.OpenVideoCapture(c.cfg.CameraIndex)
	if err != nil {
		return fmt.Errorf("opening camera %d: %w", c.cfg.CameraIndex, err)
	}
	webcam.Set(gocv.VideoCaptureFrameWidth, frameWidth)
	webcam.Set(gocv.VideoCaptureFrameHeight, frameHeight)
	webcam.Set(gocv.VideoCaptureFPS, frameRate)

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(c.cfg.CascadeFile) {
		webcam.Close()
		cascade.Close()
		return fmt.Errorf("loading face cascade %s", c.cfg.CascadeFile)
	}

	net := gocv.ReadNetFromONNX(c.cfg.ModelFile)
	if net.Empty() {
		webcam.Close()
		cascade.Close()
		return fmt.Errorf("loading emotion model %s", c.cfg.ModelFile)
	}

	c.cap = webcam
	c.cascade = cascade
	c.net = net
	c.started = true
	return nil
}

// RawScore grabs one frame and scores the first detected face. Read
// failures and empty frames report as "no face".
func (c *Camera) RawScore() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0, false
	}

	frame := gocv.NewMat()
	defer frame.Close()
	if ok := c.cap.Read(&frame); !ok || frame.Empty() {
		return 0, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	minSz := image.Pt(c.cfg.MinFaceSize, c.cfg.MinFaceSize)
	rects := c.cascade.DetectMultiScaleWithParams(gray, 1.1, 5, 0, minSz, image.Pt(0, 0))
	if len(rects) == 0 {
		return 0, false
	}

	face := frame.Region(rects[0])
	defer face.Close()

	blob := gocv.BlobFromImage(face, normScale, image.Pt(c.cfg.InputSize, c.cfg.InputSize), imagenetMean, true, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	logits := make([]float64, out.Cols())
	for i := range logits {
		logits[i] = float64(out.GetFloatAt(0, i))
	}
	probs := softmax(logits)
	if happinessIdx >= len(probs) {
		return 0, false
	}
	return probs[happinessIdx], true
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.started = false
	c.cascade.Close()
	c.net.Close()
	return c.cap.Close()
}

// softmax converts emotion logits to probabilities, shifted by the max for
// numeric stability.
func softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
