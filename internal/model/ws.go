package model

type MessageType string

const (
	MessageTypeRegister      MessageType = "register"
	MessageTypeRegistered    MessageType = "registered"
	MessageTypeUnregister    MessageType = "unregister"
	MessageTypePing          MessageType = "ping"
	MessageTypePong          MessageType = "pong"
	MessageTypePrintVouchers MessageType = "print_vouchers"
	MessageTypePrinted       MessageType = "printed"
	MessageTypePrintFailed   MessageType = "print_failed"
)

// --- WebSocket Messages ---

type WSMessage struct {
	Type     MessageType `json:"type"`
	AgentKey string      `json:"agent_key,omitempty"`
	JobID    string      `json:"job_id,omitempty"`
	Site     string      `json:"site,omitempty"` // Overrides unifi.site for a single job
	Error    string      `json:"error,omitempty"`
	Vouchers int         `json:"vouchers,omitempty"`
	Pages    int         `json:"pages,omitempty"`
}
