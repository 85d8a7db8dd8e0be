package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

// RecipientKind says who a notification is addressed to.
type RecipientKind string

const (
	RecipientBeneficiary RecipientKind = "beneficiary"
	RecipientCaseWorker  RecipientKind = "case_worker"
	RecipientWorkerPool  RecipientKind = "worker_pool"
)

func ParseRecipientKind(s string) (RecipientKind, error) {
	switch RecipientKind(s) {
	case RecipientBeneficiary, RecipientCaseWorker, RecipientWorkerPool:
		return RecipientKind(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("recipient_kind: unknown value %q", s))
}

// Recipient identifies an inbox. The worker pool has a nil ID.
type Recipient struct {
	Kind RecipientKind
	ID   uuid.UUID
}

func Beneficiary(profileID id.ProfileID) Recipient {
	return Recipient{Kind: RecipientBeneficiary, ID: uuid.UUID(profileID)}
}

func CaseWorker(worker id.WorkerID) Recipient {
	return Recipient{Kind: RecipientCaseWorker, ID: uuid.UUID(worker)}
}

// WorkerPool is the shared inbox for profiles without an assigned worker.
func WorkerPool() Recipient {
	return Recipient{Kind: RecipientWorkerPool}
}

// WorkerOrPool addresses the assigned worker, or the pool when there is none.
func WorkerOrPool(worker *id.WorkerID) Recipient {
	if worker == nil || worker.IsNil() {
		return WorkerPool()
	}
	return CaseWorker(*worker)
}

// Notification is a persisted, pull-based message.
type Notification struct {
	ID        id.NotificationID
	Recipient Recipient
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
