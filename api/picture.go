package api

// SavedPicture is returned after a picture document has been stored
type SavedPicture struct {
	ID       string `json:"_id"`
	Revision string `json:"_rev"`
}

// PicturePath locates the image file of a picture
type PicturePath struct {
	FileName string `json:"file_name"`
	Path     string `json:"path"`
}

// Error is the body of every failed request
type Error struct {
	Error string `json:"error"`
}
