package tags

type SetStoryTagsPayload struct {
	Tags []string `json:"tags" validate:"required,dive,max=100"`
}
