package domain

type TrackID int64

type TrackSourceType string

const (
	TrackSourceYoutube TrackSourceType = "YOUTUBE"
	TrackSourceUpload  TrackSourceType = "UPLOAD"
)

type Track struct {
	ID              TrackID         `json:"id"`
	SourceType      TrackSourceType `json:"sourceType"`
	Title           string          `json:"title"`
	Artist          string          `json:"artist"`
	DurationSeconds int             `json:"durationSeconds"`
	URL             string          `json:"url"`
	MetadataJSON    string          `json:"-"`
}
