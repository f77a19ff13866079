package events

// Topic constants for checkout session events.
const (
	TopicProductScanned  = "checkout.product_scanned"
	TopicOfferRegistered = "checkout.offer_registered"
	TopicTotalComputed   = "checkout.total_computed"
)

// DefaultTopics returns the canonical list of checkout topics.
func DefaultTopics() []string {
	return []string{
		TopicProductScanned,
		TopicOfferRegistered,
		TopicTotalComputed,
	}
}
