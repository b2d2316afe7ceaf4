package api

import (
	"encoding/json"

	"github.com/starford/basetag/internal/models"
	"github.com/starford/basetag/internal/settings"
)

// NoteListResponse wraps the tag summaries of all notes.
type NoteListResponse struct {
	Notes []models.NoteTags `json:"notes" validate:"required"`
	Total int               `json:"total" example:"42" validate:"required"`
}

// SettingsResponse is the persisted selector configuration.
type SettingsResponse = settings.Settings

// UpdateSettingsRequest replaces the given selector lists. Each list may be a
// JSON array or a comma-separated string; omitted lists are kept.
type UpdateSettingsRequest struct {
	CustomTagSelectors          *selectorList `json:"customTagSelectors,omitempty"`
	CustomTagContainerSelectors *selectorList `json:"customTagContainerSelectors,omitempty"`
}

type selectorList []string

func (l *selectorList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = settings.ParseList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if list == nil {
		list = []string{}
	}
	*l = list
	return nil
}
