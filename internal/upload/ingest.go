// Package upload ingests a table-of-contents file uploaded for one catalog
// entry.
//
// The target file either exists complete or not at all once Ingest returns:
// every failure path closes the output handle and then removes the target.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	DefaultMaxBytes  int64 = 1024 * 1024
	DefaultChunkSize       = 1024
)

// Ingestor writes uploads to Folder under a per-file size cap.
type Ingestor struct {
	Folder    string
	MaxBytes  int64
	ChunkSize int
	Fs        afero.Fs
}

// Result describes a completed ingestion.
type Result struct {
	Path     string
	FileName string
	Size     int64
}

func New(folder string, maxBytes int64) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Ingestor{
		Folder:    folder,
		MaxBytes:  maxBytes,
		ChunkSize: DefaultChunkSize,
		Fs:        afero.NewOsFs(),
	}
}

// Extension returns the declared file name's suffix from the last ".", or ""
// when there is none.
func Extension(fileName string) string {
	if i := strings.LastIndexAny(fileName, `/\`); i >= 0 {
		fileName = fileName[i+1:]
	}
	i := strings.LastIndex(fileName, ".")
	if i < 0 {
		return ""
	}
	return fileName[i:]
}

// TargetPath is where the upload for entryID with the given declared file
// name is written.
func (in *Ingestor) TargetPath(entryID, fileName string) string {
	return filepath.Join(in.Folder, entryID+Extension(fileName))
}

// Ingest consumes src and writes its first file part to
// Folder/entryID+extension. Form-field parts are skipped. Re-ingesting for the
// same entry overwrites the earlier file.
func (in *Ingestor) Ingest(entryID string, src Source) (*Result, error) {
	if err := validateEntryID(entryID); err != nil {
		return nil, err
	}

	for {
		part, err := src.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: "failed to read multipart stream", Err: err}
		}
		if part.FileName() == "" {
			slog.Debug("Skipping form field in upload", "field", part.FormName())
			continue
		}
		return in.write(entryID, part)
	}

	return nil, &Error{Kind: KindDecode, Message: "upload contained no file"}
}

func (in *Ingestor) write(entryID string, part Part) (res *Result, err error) {
	fs := in.fs()
	target := in.TargetPath(entryID, part.FileName())

	if err := fs.MkdirAll(in.Folder, 0o755); err != nil {
		return nil, &Error{Kind: KindIO, Path: in.Folder, Message: "failed to create upload folder", Err: err}
	}

	out, err := fs.Create(target)
	if err != nil {
		return nil, &Error{Kind: KindIO, Path: target, Message: "failed to create target file", Err: err}
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &Error{Kind: KindIO, Path: target, Message: "failed to close target file", Err: cerr}
		}
		if err != nil {
			res = nil
			removeTarget(fs, target)
		}
	}()

	n, err := in.copy(out, part)
	if err != nil {
		var uerr *Error
		if errors.As(err, &uerr) {
			uerr.Path = target
		}
		return nil, err
	}

	slog.Info("Stored uploaded file", "entry", entryID, "path", target, "bytes", n)
	return &Result{Path: target, FileName: part.FileName(), Size: n}, nil
}

// copy streams r to w in ChunkSize chunks and fails as soon as more than
// MaxBytes have been read.
func (in *Ingestor) copy(w io.Writer, r io.Reader) (int64, error) {
	chunk := in.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	limit := in.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	buf := make([]byte, chunk)
	var written int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if written+int64(n) > limit {
				return written, &Error{
					Kind:    KindTooLarge,
					Message: fmt.Sprintf("file exceeds %d bytes", limit),
					Err:     ErrTooLarge,
				}
			}
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr == nil && wn != n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, &Error{Kind: KindIO, Message: "failed to write upload", Err: werr}
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, &Error{Kind: KindIO, Message: "failed to read upload", Err: rerr}
		}
	}
}

func (in *Ingestor) fs() afero.Fs {
	if in.Fs == nil {
		return afero.NewOsFs()
	}
	return in.Fs
}

func removeTarget(fs afero.Fs, target string) {
	if err := fs.Remove(target); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to remove partial upload", "path", target, "err", err)
	}
}

func validateEntryID(entryID string) error {
	id := strings.TrimSpace(entryID)
	switch {
	case id == "":
		return &Error{Kind: KindNoTarget, Message: "no book selected for upload"}
	case id != entryID, id == ".", id == "..", strings.ContainsAny(id, `/\`):
		return &Error{Kind: KindNoTarget, Message: fmt.Sprintf("invalid entry identifier %q", entryID)}
	}
	return nil
}
