package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrExtensionNotAllowed is returned for files that are not png, jpg or jpeg
var ErrExtensionNotAllowed = errors.New("file must be a JPG, JPEG, or PNG image")

// PublicPrefix starts every stored path; it is also the URL prefix files are served under
const PublicPrefix = "uploads"

// Category is a kind of attachment with its own directory and file prefix
type Category struct {
	Dir    string
	Prefix string
}

var (
	ProfilePhoto = Category{Dir: "profile_photos", Prefix: "profile"}
	IDProof      = Category{Dir: "id_proofs", Prefix: "idproof"}
	PaymentProof = Category{Dir: "payment_proofs", Prefix: "payment"}
)

// Categories lists every upload category
var Categories = []Category{ProfilePhoto, IDProof, PaymentProof}

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Allowed reports whether filename has an allowed final extension, ignoring case
func Allowed(filename string) bool {
	_, ok := extension(filename)
	return ok
}

func extension(filename string) (string, bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	ext := strings.ToLower(filename[i+1:])
	return ext, allowedExtensions[ext]
}

// Storage writes attachments below a root directory
type Storage struct {
	root string
}

// NewStorage creates the category directories below root
func NewStorage(root string) (*Storage, error) {
	for _, c := range Categories {
		if err := os.MkdirAll(filepath.Join(root, c.Dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &Storage{root: root}, nil
}

// Root is the directory files are written to
func (s *Storage) Root() string {
	return s.root
}

// Save stores r under a fresh unique name and returns the stored path,
// relative to the parent of root, e.g. "uploads/profile_photos/profile_1a2b3c4d5e6f.png".
// Nothing is written when the extension is not allowed.
func (s *Storage) Save(c Category, filename string, r io.Reader) (string, error) {
	ext, ok := extension(filename)
	if !ok {
		return "", ErrExtensionNotAllowed
	}

	name := sanitize(fmt.Sprintf("%s_%s.%s", c.Prefix, uniqueSuffix(), ext))
	dst := filepath.Join(s.root, c.Dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path.Join(PublicPrefix, c.Dir, name), nil
}

// SaveFile stores a multipart file. A nil header or empty filename means
// no attachment was supplied and yields an empty path and no error.
func (s *Storage) SaveFile(c Category, fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}
	if !Allowed(fh.Filename) {
		return "", ErrExtensionNotAllowed
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.Save(c, fh.Filename, src)
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (s *Storage) Remove(stored string) error {
	cleaned := path.Clean(stored)
	if !strings.HasPrefix(cleaned, PublicPrefix+"/") || strings.Contains(cleaned, "..") {
		return fmt.Errorf("not an upload path: %q", stored)
	}
	rel := strings.TrimPrefix(cleaned, PublicPrefix+"/")

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func uniqueSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func sanitize(name string) string {
	return unsafeChars.ReplaceAllString(filepath.Base(name), "_")
}
