package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Body is an outbound request payload. It is encoded once per call so that a
// retry after a token refresh resends the exact same bytes.
type Body interface {
	encode() (encodedBody, error)
}

type encodedBody struct {
	data        []byte
	contentType string
	multipart   bool
}

// JSON encodes v as an application/json body.
func JSON(v any) Body {
	return jsonBody{value: v}
}

type jsonBody struct {
	value any
}

func (b jsonBody) encode() (encodedBody, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return encodedBody{}, fmt.Errorf("marshal request body: %w", err)
	}
	return encodedBody{data: data, contentType: "application/json"}, nil
}

// Raw sends data as-is with the given content type.
func Raw(data []byte, contentType string) Body {
	return rawBody{data: data, contentType: contentType}
}

type rawBody struct {
	data        []byte
	contentType string
}

func (b rawBody) encode() (encodedBody, error) {
	return encodedBody{data: b.data, contentType: b.contentType}, nil
}

// Field is a plain multipart form value.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file part. Content is read once when the request is
// first encoded.
type File struct {
	FieldName   string
	FileName    string
	ContentType string // defaults to application/octet-stream
	Content     io.Reader
}

// Form is a multipart/form-data payload used for image and avatar uploads.
type Form struct {
	Fields []Field
	Files  []File
}

// Add appends a plain value.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
}

// AddBool appends a boolean the way the API expects it ("true"/"false").
func (f *Form) AddBool(name string, value bool) {
	if value {
		f.Add(name, "true")
		return
	}
	f.Add(name, "false")
}

// AddFile appends a file part.
func (f *Form) AddFile(fieldName, fileName, contentType string, content io.Reader) {
	f.Files = append(f.Files, File{FieldName: fieldName, FileName: fileName, ContentType: contentType, Content: content})
}

// Multipart encodes form as multipart/form-data. The generated content type,
// boundary included, always wins over an explicit ContentType on the request.
func Multipart(form *Form) Body {
	return multipartBody{form: form}
}

type multipartBody struct {
	form *Form
}

func (b multipartBody) encode() (encodedBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if b.form != nil {
		for _, field := range b.form.Fields {
			if err := w.WriteField(field.Name, field.Value); err != nil {
				return encodedBody{}, fmt.Errorf("write form field %q: %w", field.Name, err)
			}
		}

		for _, file := range b.form.Files {
			contentType := file.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
			h.Set("Content-Type", contentType)

			part, err := w.CreatePart(h)
			if err != nil {
				return encodedBody{}, fmt.Errorf("create form file %q: %w", file.FieldName, err)
			}
			if file.Content != nil {
				if _, err := io.Copy(part, file.Content); err != nil {
					return encodedBody{}, fmt.Errorf("copy form file %q: %w", file.FieldName, err)
				}
			}
		}
	}

	if err := w.Close(); err != nil {
		return encodedBody{}, fmt.Errorf("close multipart writer: %w", err)
	}
	return encodedBody{data: buf.Bytes(), contentType: w.FormDataContentType(), multipart: true}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
