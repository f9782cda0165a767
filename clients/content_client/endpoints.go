package content_client

const (
	// API Endpoints
	TopicEndpoint      = "/api/topics/%d"
	TopicItemsEndpoint = "/api/topics/%d/items"
)
