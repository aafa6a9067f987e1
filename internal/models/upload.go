package models

import "time"

// UploadedFile is a staged CV: its original name and the text extracted
// from it. The PDF bytes are not kept.
type UploadedFile struct {
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// RawUpload is a file as it arrives from the client, before decoding.
type RawUpload struct {
	Filename string `json:"filename"`
	Contents string `json:"contents"`
}
