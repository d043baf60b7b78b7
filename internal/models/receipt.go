package models

import (
	"fmt"

	"treasury-sweeper/internal/lamports"
)

// TransferReceipt describes one confirmed sweep. It lives for a single
// cycle: built after the transaction is finalized, rendered into the
// operator notification, then discarded.
type TransferReceipt struct {
	AttemptId string
	Lamports  uint64
	Sender    string
	Receiver  string
	Signature string
}

// NotificationText renders the receipt as the human-readable message posted
// to the notification channel.
func (r TransferReceipt) NotificationText() string {
	return fmt.Sprintf("Transferred %d lamports (%s SOL) from %s to %s. Signature: %s",
		r.Lamports, lamports.ToSol(r.Lamports).String(), r.Sender, r.Receiver, r.Signature)
}
