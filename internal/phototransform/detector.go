package phototransform

import (
	"context"
	"io"
)

// Box is a face bounding box in natural image pixels.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// FaceDetector finds the most prominent face in an image. Implementations
// report found=false when no face is detected; an error means the detection
// itself failed.
type FaceDetector interface {
	DetectFace(ctx context.Context, image io.Reader) (box Box, found bool, err error)
}
