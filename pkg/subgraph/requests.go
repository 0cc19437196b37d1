package subgraph

import "github.com/CirclesUBI/circles-analysis/pkg/pagination"

const transferFields = "id from to amount"

// Transfers selects every token transfer.
func Transfers() pagination.Request {
	return pagination.Request{Entity: "transfers", Fields: transferFields}
}

// HubTransferNotifications selects transitive transfers routed through the hub.
func HubTransferNotifications() pagination.Request {
	return pagination.Request{
		Entity: "notifications",
		Fields: "id time hubTransfer { " + transferFields + " }",
		Where:  "type: " + NotificationHubTransfer,
	}
}

// TransferNotifications selects direct transfers with their time.
func TransferNotifications() pagination.Request {
	return pagination.Request{
		Entity: "notifications",
		Fields: "id time transfer { " + transferFields + " }",
		Where:  "type: " + NotificationTransfer,
	}
}

// TrustNotifications selects trust changes.
func TrustNotifications() pagination.Request {
	return pagination.Request{
		Entity: "notifications",
		Fields: "id time trust { id canSendTo user limitPercentage }",
		Where:  "type: " + NotificationTrust,
	}
}

// OwnershipChanges selects safe owner changes.
func OwnershipChanges() pagination.Request {
	return pagination.Request{Entity: "ownershipChanges", Fields: "id adds removes"}
}

// Safes selects safe ids only.
func Safes() pagination.Request {
	return pagination.Request{Entity: "safes", Fields: "id"}
}

// SafeBalances selects safes with their token balances.
func SafeBalances() pagination.Request {
	return pagination.Request{Entity: "safes", Fields: "id balances { amount }"}
}

// DeployedSafes selects deployed safes, either organization (wallet) or user safes.
func DeployedSafes(organization bool) pagination.Request {
	where := "deployed: true, organization: false"
	if organization {
		where = "deployed: true, organization: true"
	}
	return pagination.Request{Entity: "safes", Fields: "id", Where: where}
}
