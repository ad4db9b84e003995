package formats

type UpdateFormatPayload struct {
	Command *string `json:"command" validate:"omitempty,max=500"`
}
