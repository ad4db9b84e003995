package settings

type UpdateSettingsPayload struct {
	Launchers         map[string]string `json:"launchers,omitempty"`
	ResourceOpener    *string           `json:"resource_opener,omitempty" validate:"omitempty,max=500"`
	FetchMetadata     *bool             `json:"fetch_metadata,omitempty"`
	FetchCoverArt     *bool             `json:"fetch_cover_art,omitempty"`
	RequestsPerMinute *int              `json:"requests_per_minute,omitempty" validate:"omitempty,min=1,max=60"`
}
