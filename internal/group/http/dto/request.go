// Package dto provides data transfer objects for the study group HTTP layer.
package dto

// CreateGroupRequest represents the API request to create a study group. Validation
// happens in the saga so rejected requests are reported like any other saga outcome.
type CreateGroupRequest struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
