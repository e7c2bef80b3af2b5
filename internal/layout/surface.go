package layout

// Surface is a page canvas. Coordinates are in points with the origin at the
// bottom-left corner of the page, as in a PDF content stream.
type Surface interface {
	PageSize() (width, height float64)
	AddPage()
	Text(x, y float64, text string)
	Rect(x, y, width, height float64)
	// Image places a PNG with its lower-left corner at x, y. Images with the
	// same name have the same content.
	Image(name string, x, y, width, height float64, png []byte) error
}

// CodeImager produces a scannable network-join image for a voucher.
type CodeImager interface {
	Encode(ssid, code string) ([]byte, error)
}
