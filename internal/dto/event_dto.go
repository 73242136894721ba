package dto

// TrackEventRequest is the public ingestion payload. StoreID is the subject of
// the tracked event; Source identifies the surface that emitted it.
type TrackEventRequest struct {
	StoreID   uint   `json:"store_id"`
	EventType string `json:"event_type"`
	Source    string `json:"source"`
}

type TrackEventResponse struct {
	Tracked bool `json:"tracked"`
}
