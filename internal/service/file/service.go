package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// PhotoService stores the still image captured with each punch
type PhotoService interface {
	// UploadPunchPhoto compresses and stores a punch photo, returning its storage path
	UploadPunchPhoto(ctx context.Context, employeeID string, date time.Time, kind string, photo []byte, filename string) (string, error)

	// DeletePhoto removes a stored photo. Missing files are not an error.
	DeletePhoto(ctx context.Context, path string) error

	// PhotoURL generates URL to access a stored photo
	PhotoURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type photoServiceImpl struct {
	storage     storage.FileStorage
	compression photoCompression
}

func NewPhotoService(storage storage.FileStorage) PhotoService {
	return &photoServiceImpl{
		storage:     storage,
		compression: defaultCompression,
	}
}

// UploadPunchPhoto stores the photo as JPEG under
// attendance/{date}/{employeeID}-{kind}-{uuid}.jpg
func (s *photoServiceImpl) UploadPunchPhoto(ctx context.Context, employeeID string, date time.Time, kind string, photo []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	compressed, err := s.compression.apply(photo, ext != ".png")
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	key := path.Join(
		"attendance",
		date.Format("2006-01-02"),
		fmt.Sprintf("%s-%s-%s.jpg", employeeID, kind, uuid.New().String()),
	)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload punch photo: %w", err)
	}

	return uploadedPath, nil
}

func (s *photoServiceImpl) DeletePhoto(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *photoServiceImpl) PhotoURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// photoCompression keeps punch photos inside a size band: large enough for a
// face to be recognisable, small enough to keep a year of punches cheap.
type photoCompression struct {
	MinBytes     int
	MaxBytes     int
	StartQuality int
	FloorQuality int
	// Resized photos never go below these dimensions.
	MinWidth, MinHeight int
}

var defaultCompression = photoCompression{
	MinBytes:     50 * 1024,
	MaxBytes:     150 * 1024,
	StartQuality: 85,
	FloorQuality: 50,
	MinWidth:     600,
	MinHeight:    400,
}

func (c photoCompression) inBand(n int) bool {
	return n >= c.MinBytes && n <= c.MaxBytes
}

// apply returns a JPEG inside the band when possible. A JPEG input that is
// already inside the band is stored untouched.
func (c photoCompression) apply(photo []byte, isJPEG bool) ([]byte, error) {
	if isJPEG && c.inBand(len(photo)) {
		return photo, nil
	}

	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out []byte
	for quality := c.StartQuality; quality >= c.FloorQuality; quality -= 5 {
		out, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(out) <= c.MaxBytes {
			// Too small is accepted: lowering quality only shrinks it further.
			return out, nil
		}
	}

	// Still too large: scale towards the middle of the band.
	target := float64(c.MinBytes+c.MaxBytes) / 2
	ratio := math.Sqrt(target / float64(len(out)))
	bounds := img.Bounds()
	width := max(int(float64(bounds.Dx())*ratio), c.MinWidth)
	height := max(int(float64(bounds.Dy())*ratio), c.MinHeight)

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage scales with CatmullRom, which keeps faces sharp on downscale.
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
