package models

// UploadedImage is an image received from a caller, held only for the life of one request.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}
