package hw

// Service is a hardware image service: it owns the device and every image,
// buffer and surface allocated from it.
type Service interface {
	Mapper

	// CreateImage allocates an image of the given format and size.
	CreateImage(format FourCC, width, height int) (Descriptor, error)
	// DestroyImage releases an image and its buffer.
	DestroyImage(id ImageID) error
	// Describe returns the descriptor of an image created by this service.
	Describe(id ImageID) (Descriptor, error)

	// CreateSurface allocates a 32-bit RGB render target.
	CreateSurface(width, height int) (SurfaceID, error)
	// DestroySurface releases a surface.
	DestroySurface(id SurfaceID) error
	// PutImage copies an image into a surface, converting formats as needed.
	PutImage(surface SurfaceID, image ImageID) error
	// DeriveImage returns an image that aliases the surface's storage.
	DeriveImage(surface SurfaceID) (Descriptor, error)

	// Close releases the device. Images and surfaces must not be used after.
	Close() error
}
