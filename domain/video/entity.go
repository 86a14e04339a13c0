package video

// Video is the metadata the agents use to play a clip.
type Video struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"videoUrl" validate:"required,url"`
}

type library struct {
	Videos []Video `json:"videos" validate:"dive"`
}
