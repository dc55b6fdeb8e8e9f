package domain

// Notification is the rendered payload handed to the delivery collaborator.
type Notification struct {
	Event      EventKind `json:"event"`
	FolderID   string    `json:"folder_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
}

// DeliveryReport records per-recipient outcomes of one notification. Failures
// are reported as metadata only; they never roll back the transition that
// produced the event.
type DeliveryReport struct {
	FolderID  string   `json:"folder_id"`
	Event     EventKind `json:"event"`
	Delivered []string `json:"delivered,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}
