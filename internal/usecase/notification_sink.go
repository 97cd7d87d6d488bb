package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stashway/stashway-backend/internal/domain/entity"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	domainRepo "github.com/stashway/stashway-backend/internal/domain/repository"
	"go.uber.org/zap"
)

// NotificationSink emits post-commit side effects. Its methods never return
// errors: every failure is logged and swallowed.
type NotificationSink struct {
	notifications domainRepo.NotificationRepository
	publisher     provider.Publisher
	channel       string
	mailer        provider.Mailer
	identity      provider.IdentityService
	adminEmails   []string
	now           func() time.Time
	logger        *zap.Logger
}

// NotificationOptions wires the optional delivery channels. Nil fields are skipped.
type NotificationOptions struct {
	Publisher   provider.Publisher
	Channel     string
	Mailer      provider.Mailer
	Identity    provider.IdentityService
	AdminEmails []string
}

func NewNotificationSink(notifications domainRepo.NotificationRepository, opts NotificationOptions, logger *zap.Logger) *NotificationSink {
	return &NotificationSink{
		notifications: notifications,
		publisher:     opts.Publisher,
		channel:       opts.Channel,
		mailer:        opts.Mailer,
		identity:      opts.Identity,
		adminEmails:   opts.AdminEmails,
		now:           time.Now,
		logger:        logger,
	}
}

// PaymentVerified tells the payer their plan is live and informs admins.
func (n *NotificationSink) PaymentVerified(ctx context.Context, req *entity.PaymentRequest) {
	now := n.now().UTC()
	payload := map[string]interface{}{
		"plan":       req.Plan.String(),
		"request_id": req.ID.String(),
	}

	notification := &entity.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      entity.NotificationPlanPaidSuccess,
		Payload:   payload,
		CreatedAt: now,
	}
	if err := n.notifications.CreateNotification(ctx, notification); err != nil {
		n.logFailure("create_notification", req, err)
	}

	celebration := &entity.Celebration{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Title:     fmt.Sprintf("Welcome to %s", planDisplayName(req.Plan)),
		Message:   "Your MMG payment was verified and your plan is now active.",
		Badge:     "plan_" + req.Plan.String(),
		Payload:   payload,
		CreatedAt: now,
	}
	if err := n.notifications.CreateCelebration(ctx, celebration); err != nil {
		n.logFailure("create_celebration", req, err)
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, n.channel, notification); err != nil {
			n.logFailure("publish_notification", req, err)
		}
	}

	n.emailAdmins(ctx, req,
		fmt.Sprintf("[Stashway] MMG payment verified: %s", req.ReferenceCode),
		fmt.Sprintf("Plan %s was activated after verification.", planDisplayName(req.Plan)))
}

// PaymentAwaitingReview asks admins for the counter-screenshot.
func (n *NotificationSink) PaymentAwaitingReview(ctx context.Context, req *entity.PaymentRequest) {
	n.emailAdmins(ctx, req,
		fmt.Sprintf("[Stashway] MMG payment awaiting review: %s", req.ReferenceCode),
		"The payer uploaded a screenshot. Upload the MMG merchant confirmation to complete verification.")
}

// ListForUser returns the user's newest notifications first.
func (n *NotificationSink) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	if limit < entity.MinPageSize || limit > entity.MaxPageSize {
		limit = entity.DefaultPageSize
	}
	return n.notifications.ListNotifications(ctx, userID, limit)
}

func (n *NotificationSink) emailAdmins(ctx context.Context, req *entity.PaymentRequest, subject, lead string) {
	if n.mailer == nil || len(n.adminEmails) == 0 {
		return
	}

	payer := req.UserID
	if n.identity != nil {
		user, err := n.identity.GetUserByID(ctx, req.UserID)
		if err != nil {
			n.logger.Warn("Payer lookup failed, emailing without address",
				zap.String("request_id", req.ID.String()),
				zap.Error(err))
		} else if user != nil && user.Email != "" {
			payer = fmt.Sprintf("%s (%s)", user.Email, req.UserID)
		}
	}

	body := strings.Join([]string{
		lead,
		"",
		"Request:   " + req.ID.String(),
		"Payer:     " + payer,
		"Plan:      " + planDisplayName(req.Plan),
		"Amount:    " + req.Currency + " " + req.AmountExpected.StringFixed(2),
		"Reference: " + req.ReferenceCode,
		"Status:    " + string(req.Status),
	}, "\n")

	if err := n.mailer.Send(ctx, n.adminEmails, subject, body); err != nil {
		n.logFailure("email_admins", req, err)
	}
}

func (n *NotificationSink) logFailure(step string, req *entity.PaymentRequest, err error) {
	n.logger.Error("Notification side effect failed",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", req.UserID),
		zap.String("step", step),
		zap.String("status", "failed"),
		zap.Error(err))
}

func planDisplayName(plan entity.Plan) string {
	switch plan {
	case entity.PlanPersonal:
		return "Personal"
	case entity.PlanPro:
		return "Pro"
	case entity.PlanProMax:
		return "Pro Max"
	default:
		return plan.String()
	}
}
