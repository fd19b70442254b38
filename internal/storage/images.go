package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

const (
	PostsDir     = "posts"
	ThumbsDir    = "posts/thumbs"
	ThumbWidth   = 960
	ThumbHeight  = 339
	thumbQuality = 90
)

var ErrNotAnImage = errors.New("file is not an image")

var imageExtensions = map[string]string{
	"gif":  ".gif",
	"png":  ".png",
	"jpeg": ".jpg",
}

// StoredImage is an uploaded picture and its feed thumbnail.
type StoredImage struct {
	Path      string
	Thumbnail string
}

// DecodeImageConfig reports the format of an image, failing for anything
// that is not a GIF, PNG or JPEG.
func DecodeImageConfig(r io.Reader) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return cfg, "", ErrNotAnImage
	}
	if _, ok := imageExtensions[format]; !ok {
		return cfg, "", ErrNotAnImage
	}
	return cfg, format, nil
}

// CreateThumb fits img into the feed thumbnail box and encodes it as JPEG.
func CreateThumb(img image.Image, writer io.Writer) error {
	thumb := resize.Thumbnail(ThumbWidth, ThumbHeight, img, resize.Lanczos3)
	return jpeg.Encode(writer, thumb, &jpeg.Options{Quality: thumbQuality})
}

// SavePostImage stores an uploaded image under a random name together with
// its thumbnail.
func SavePostImage(ctx context.Context, st Storage, reader io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}
	ext, ok := imageExtensions[format]
	if !ok {
		return nil, ErrNotAnImage
	}

	name := uuid.NewString()
	stored := &StoredImage{
		Path:      path.Join(PostsDir, name+ext),
		Thumbnail: path.Join(ThumbsDir, name+".jpg"),
	}
	if err := st.Save(ctx, stored.Path, bytes.NewReader(data), "image/"+format); err != nil {
		return nil, err
	}

	var thumb bytes.Buffer
	if err := CreateThumb(img, &thumb); err != nil {
		return nil, errors.Wrap(err, "create thumbnail")
	}
	if err := st.Save(ctx, stored.Thumbnail, &thumb, "image/jpeg"); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeletePostImage removes a stored image and its thumbnail, ignoring empty
// paths.
func DeletePostImage(ctx context.Context, st Storage, img StoredImage) error {
	for _, p := range []string{img.Path, img.Thumbnail} {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := st.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
