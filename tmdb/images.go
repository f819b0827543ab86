package tmdb

// ImageSize is a CDN size bucket such as w185 or original
type ImageSize string

const (
	ImageSizeSmall    ImageSize = "w185"
	ImageSizeMedium   ImageSize = "w342"
	ImageSizeLarge    ImageSize = "w500"
	ImageSizeBackdrop ImageSize = "w780"
	ImageSizeOriginal ImageSize = "original"
)

// ImageURL builds a CDN URL for a path fragment. It returns an empty string
// when the path is absent. The URL is not checked against the CDN.
func (c *Client) ImageURL(path string, size ImageSize) string {
	return BuildImageURL(c.imageBase, path, size)
}

// ImageBase returns the configured image CDN root
func (c *Client) ImageBase() string {
	return c.imageBase
}

// BuildImageURL concatenates base, size bucket and path
func BuildImageURL(base, path string, size ImageSize) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = ImageSizeLarge
	}
	return base + "/" + string(size) + path
}
