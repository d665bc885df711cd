package domain

// TransformedImage represents a re-encoded image ready for serving.
type TransformedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	SizeBytes   int
	ETag        string
}

const (
	// TransformMaxWidth is the maximum width the transform gateway will
	// produce, regardless of the requested parameters.
	TransformMaxWidth = 2400

	// TransformMaxSize is the maximum size of re-encoded image data (2MB).
	TransformMaxSize = 2 * 1024 * 1024
)
