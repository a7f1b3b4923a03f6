package upload

import (
	"io"
	"mime/multipart"
)

// Part is one item of a multipart upload. Form fields have an empty FileName.
type Part interface {
	io.Reader
	FileName() string
	FormName() string
}

// Source iterates over the parts of an upload. NextPart returns io.EOF after
// the last part.
type Source interface {
	NextPart() (Part, error)
}

type multipartSource struct {
	r *multipart.Reader
}

// FromMultipart adapts a standard multipart reader.
func FromMultipart(r *multipart.Reader) Source {
	return multipartSource{r: r}
}

func (s multipartSource) NextPart() (Part, error) {
	p, err := s.r.NextPart()
	if err != nil {
		return nil, err
	}
	return p, nil
}
