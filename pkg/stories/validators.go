package stories

type ListStoriesQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search   *string `query:"search" json:"search,omitempty"`
	GenreID  *int    `query:"genre_id" json:"genre_id,omitempty"`
	TagID    *int    `query:"tag_id" json:"tag_id,omitempty"`
	SeriesID *int    `query:"series_id" json:"series_id,omitempty"`
	GroupID  *int    `query:"group_id" json:"group_id,omitempty"`
}

type MergeStoryPayload struct {
	TargetID int `json:"target_id" validate:"required,min=1"`
}

type ExportStoriesPayload struct {
	StoryIDs []int `json:"story_ids" validate:"required,min=1"`
}
