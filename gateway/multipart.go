package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"invisiguard/models"
)

// filesField is the form field every uploaded file is attached under.
const filesField = "files"

// buildMultipart encodes files into a multipart body. The whole body is
// built before the request so an unreadable file fails as an InputError
// without touching the network.
func buildMultipart(op string, files models.SelectedFiles) (*bytes.Buffer, string, error) {
	if len(files) == 0 {
		return nil, "", &InputError{Op: op, Reason: "no files selected"}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		if err := appendFile(writer, f); err != nil {
			return nil, "", &InputError{Op: op, Reason: fmt.Sprintf("read %s", f.Name()), Err: err}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", &InputError{Op: op, Reason: "finish multipart body", Err: err}
	}

	return body, writer.FormDataContentType(), nil
}

func appendFile(writer *multipart.Writer, f models.FileHandle) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	part, err := writer.CreateFormFile(filesField, f.Name())
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}
