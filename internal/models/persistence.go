package models

// LogbookV1 is the on-disk snapshot envelope with an explicit version field.
// Dives reference sites by id; the loader resolves the pointers.
type LogbookV1 struct {
	Version int         `json:"version"`
	Sites   []*DiveSite `json:"sites,omitempty"`
	Dives   []*Dive     `json:"dives"`
}

const LogbookVersion = 1
