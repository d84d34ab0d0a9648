package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/burugo/thing"
)

// Image is the persisted metadata row for one uploaded image. Analysis holds
// the raw JSON recorded by the prediction step; it is schema-free on purpose
// and stays empty until a prediction is recorded. StoredFilename decouples
// the public name from the on-disk name so originals can never collide.
type Image struct {
	thing.BaseModel
	Filename       string    `db:"filename" json:"filename"`
	StoredFilename string    `db:"stored_filename,index" json:"stored_filename"`
	UserID         int64     `db:"user_id,index" json:"user_id"`
	UploadDate     time.Time `db:"upload_date,index" json:"upload_date"`
	Path           string    `db:"path" json:"path"`
	URL            string    `db:"url" json:"url"`
	Size           int64     `db:"size" json:"size"`
	Mimetype       string    `db:"mimetype" json:"mimetype"`
	IsSample       bool      `db:"is_sample" json:"is_sample"`
	Analysis       string    `db:"analysis" json:"-"`
}

func (i *Image) TableName() string {
	return "images"
}

var ImageDB *thing.Thing[*Image]

func ImageInit() error {
	var err error
	ImageDB, err = thing.Use[*Image]()
	return err
}

// ErrRecordNotFound reports a lookup that matched no row, as opposed to a
// failing query.
var ErrRecordNotFound = errors.New("record not found")

func GetImageById(id int64) (*Image, error) {
	if id == 0 {
		return nil, errors.New("image id is empty")
	}
	images, err := ImageDB.Where("id = ?", id).Fetch(0, 1)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrRecordNotFound
	}
	return images[0], nil
}

// GetImagesByUserId returns the user's images newest first. limit <= 0 means
// no limit. Callers rely on the upload_date DESC ordering.
func GetImagesByUserId(userID int64, limit int) ([]*Image, error) {
	query := ImageDB.Where("user_id = ?", userID).Order("upload_date DESC")
	if limit > 0 {
		return query.Fetch(0, limit)
	}
	return query.All()
}

func CountImagesByUserId(userID int64) (int64, error) {
	return ImageDB.Where("user_id = ?", userID).Count()
}

func (image *Image) Insert() error {
	if image.UploadDate.IsZero() {
		image.UploadDate = time.Now()
	}
	return ImageDB.Save(image)
}

// SetAnalysis persists payload as the image's analysis JSON. Analysis is the
// only field mutated after creation.
func (image *Image) SetAnalysis(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	image.Analysis = string(raw)
	return ImageDB.Save(image)
}

// AnalysisJSON returns the stored analysis as raw JSON, or nil while no
// prediction has been recorded (rendered as null).
func (image *Image) AnalysisJSON() json.RawMessage {
	if image.Analysis == "" {
		return nil
	}
	return json.RawMessage(image.Analysis)
}
