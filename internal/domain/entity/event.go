package entity

import (
	"time"

	"github.com/google/uuid"
)

// ActorRole identifies who caused a payment event.
type ActorRole string

const (
	ActorPayer  ActorRole = "payer"
	ActorAdmin  ActorRole = "admin"
	ActorSystem ActorRole = "system"
)

// SystemActorID marks events written by the service itself.
const SystemActorID = "system"

// PaymentEventType names an audit-log entry.
type PaymentEventType string

const (
	EventRequestCreated        PaymentEventType = "REQUEST_CREATED"
	EventUserUploaded          PaymentEventType = "USER_UPLOADED"
	EventUserExtractionFailed  PaymentEventType = "USER_EXTRACTION_FAILED"
	EventAIParsed              PaymentEventType = "AI_PARSED"
	EventAdminUploaded         PaymentEventType = "ADMIN_UPLOADED"
	EventAdminExtractionFailed PaymentEventType = "ADMIN_EXTRACTION_FAILED"
	EventAdminVerified         PaymentEventType = "ADMIN_VERIFIED"
	EventAdminRejected         PaymentEventType = "ADMIN_REJECTED"
	EventPlanUpgraded          PaymentEventType = "PLAN_UPGRADED"
	EventPlanUpgradeFailed     PaymentEventType = "PLAN_UPGRADE_FAILED"
	EventRequestExpired        PaymentEventType = "REQUEST_EXPIRED"
)

// PaymentEvent is an append-only audit record scoped to one request.
type PaymentEvent struct {
	ID        uuid.UUID              `json:"id"`
	RequestID uuid.UUID              `json:"request_id"`
	ActorID   string                 `json:"actor_id"`
	ActorRole ActorRole              `json:"actor_role"`
	EventType PaymentEventType       `json:"event_type"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
