// Package subgraph defines the Circles UBI subgraph records fetched by the
// analyses, together with the page requests that select them.
package subgraph

import (
	"fmt"
	"strconv"

	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
)

// Notification types used as filters.
const (
	NotificationTransfer    = "TRANSFER"
	NotificationHubTransfer = "HUB_TRANSFER"
	NotificationTrust       = "TRUST"
)

// ZeroAddress is the sender of UBI payouts.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TransferRef is the transfer part of a transfer or hub transfer notification.
type TransferRef struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// TrustRef is the trust part of a trust notification.
type TrustRef struct {
	ID              string `json:"id"`
	CanSendTo       string `json:"canSendTo"`
	User            string `json:"user"`
	LimitPercentage string `json:"limitPercentage"`
}

// Revoked reports whether the trust edge was removed (limit set to zero).
func (t TrustRef) Revoked() bool {
	return t.LimitPercentage == "0"
}

// Transfer is a token transfer.
type Transfer struct {
	pagination.Node
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Notification is a time-stamped event of one of the notification types.
type Notification struct {
	pagination.Node
	Time        string       `json:"time"`
	Transfer    *TransferRef `json:"transfer,omitempty"`
	HubTransfer *TransferRef `json:"hubTransfer,omitempty"`
	Trust       *TrustRef    `json:"trust,omitempty"`
}

// Timestamp parses Time as Unix seconds.
func (n Notification) Timestamp() (int64, error) {
	ts, err := strconv.ParseInt(n.Time, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("notification %s: invalid time %q", n.ID, n.Time)
	}
	return ts, nil
}

// OwnershipChange records an owner being added to or removed from a safe.
type OwnershipChange struct {
	pagination.Node
	Adds    string `json:"adds"`
	Removes string `json:"removes"`
}

// Balance is one token balance held by a safe.
type Balance struct {
	Amount string `json:"amount"`
}

// Safe is a Circles wallet.
type Safe struct {
	pagination.Node
	Balances []Balance `json:"balances,omitempty"`
}
