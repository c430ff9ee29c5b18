package gateway

import "encoding/json"

// Webhook event keys the reconciler understands. Anything else is
// acknowledged and ignored for forward compatibility.
const (
	EventChargeComplete = "charge.complete"
	EventChargeRefunded = "charge.refunded"
)

const (
	ChargeSuccessful = "successful"
	ChargeFailed     = "failed"
)

// Event is the envelope the gateway posts to the webhook endpoint.
type Event struct {
	ID   string          `json:"id"`
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// ChargeData is the charge object carried by charge.* events. Metadata holds
// the ids this platform attached at charge creation.
type ChargeData struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	FailureCode string            `json:"failure_code"`
	Metadata    map[string]string `json:"metadata"`
}

func (e *Event) Charge() (ChargeData, error) {
	var ch ChargeData
	err := json.Unmarshal(e.Data, &ch)
	return ch, err
}
