package state

import "github.com/google/uuid"

// siteID identifies this board process when no client id has been assigned
// by a host.
var siteID = uuid.NewString()

// SiteID returns the id of this board process.
func SiteID() string {
	return siteID
}

// NewLineID returns a fresh line id.
func NewLineID() string {
	return uuid.NewString()
}
