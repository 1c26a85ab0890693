package domain

// InboundMessage is a chat message as delivered by the channel transport.
// DisplayName is empty when the channel does not provide one.
type InboundMessage struct {
	SenderID    string `json:"sender_id"`
	Body        string `json:"body"`
	DisplayName string `json:"display_name"`
	IsGroup     bool   `json:"is_group"`
}

type Intent string

const (
	IntentGreeting         Intent = "greeting"
	IntentOrderRequest     Intent = "order_request"
	IntentTimeConfirmation Intent = "time_confirmation"
	IntentUnknown          Intent = "unknown"
)
