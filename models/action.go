package models

// ActionRequest carries the optional operator-entered details of a handover
// or return: free-form notes and a link to photo evidence uploaded by the
// panel. Both fields pass through to the storage platform unchanged.
type ActionRequest struct {
	Notes       string `json:"notes,omitempty"`
	EvidenceURL string `json:"evidenceUrl,omitempty"`
}
