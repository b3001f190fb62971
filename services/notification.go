package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cohabit-backend/config"
	"cohabit-backend/database"
	"cohabit-backend/finance"
	"cohabit-backend/models"

	"github.com/google/uuid"
)

const deliveryTimeout = 15 * time.Second

// NotificationService stores in-app notifications and fans them out to push
// and email. Storage is synchronous; delivery is best effort and runs in the
// background.
type NotificationService struct {
	pusher  Pusher
	mailer  Mailer
	appName string
	appURL  string
	wg      sync.WaitGroup
}

var (
	notifService *NotificationService
	notifMu      sync.Mutex
)

func NewNotificationService(pusher Pusher, mailer Mailer, appName, appURL string) *NotificationService {
	return &NotificationService{pusher: pusher, mailer: mailer, appName: appName, appURL: appURL}
}

// InitNotificationService wires the delivery channels the config enables.
func InitNotificationService(ctx context.Context, cfg *config.Config) *NotificationService {
	var pusher Pusher
	if cfg.FirebaseCredPath != "" {
		p, err := NewFirebasePusher(ctx, cfg.FirebaseCredPath)
		if err != nil {
			slog.Warn("Firebase messaging unavailable, push disabled", "error", err)
		} else {
			pusher = p
		}
	} else {
		slog.Info("FIREBASE_CREDENTIALS not set, push disabled")
	}

	var mailer Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.AppName)
	} else {
		slog.Info("SENDGRID_API_KEY not set, email disabled")
	}

	ns := NewNotificationService(pusher, mailer, cfg.AppName, cfg.AppURL)
	SetNotificationService(ns)
	return ns
}

func SetNotificationService(ns *NotificationService) {
	notifMu.Lock()
	defer notifMu.Unlock()
	notifService = ns
}

// GetNotificationService returns the configured service, or one that only
// stores notifications when none was configured.
func GetNotificationService() *NotificationService {
	notifMu.Lock()
	defer notifMu.Unlock()
	if notifService == nil {
		notifService = NewNotificationService(nil, nil, "Cohabit", "")
	}
	return notifService
}

// Wait blocks until background deliveries started so far have finished.
func (ns *NotificationService) Wait() {
	ns.wg.Wait()
}

// Notify stores one copy of n per recipient and delivers it in the background.
func (ns *NotificationService) Notify(ctx context.Context, recipients []models.User, n models.Notification) error {
	if len(recipients) == 0 {
		return nil
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		row := n
		row.ID = uuid.Nil
		row.RecipientID = r.ID
		rows = append(rows, row)
	}
	if err := database.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	ns.deliver(recipients, n)
	return nil
}

func (ns *NotificationService) deliver(recipients []models.User, n models.Notification) {
	if ns.pusher == nil && ns.mailer == nil {
		return
	}

	data := map[string]string{"type": n.Type}
	if n.HouseholdID != nil {
		data["household_id"] = n.HouseholdID.String()
	}
	if n.ReferenceID != nil {
		data["reference_id"] = n.ReferenceID.String()
	}

	ns.wg.Add(1)
	go func() {
		defer ns.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		for _, r := range recipients {
			if ns.pusher != nil && r.FCMToken != "" {
				if err := ns.pusher.Push(ctx, r.FCMToken, n.Title, n.Message, data); err != nil {
					slog.Warn("Push notification failed", "recipient_id", r.ID, "type", n.Type, "error", err)
				}
			}
			if ns.mailer != nil && r.Email != "" {
				ns.sendEmail(ctx, r.Email, r.Name(), n.Title, emailContent{
					Heading: n.Title,
					Name:    r.Name(),
					Body:    n.Message,
					Link:    ns.appURL,
				})
			}
		}
	}()
}

func (ns *NotificationService) sendEmail(ctx context.Context, toEmail, toName, subject string, content emailContent) {
	content.App = ns.appName
	html, err := renderEmail(content)
	if err != nil {
		slog.Warn("Email render failed", "to", toEmail, "error", err)
		return
	}
	if err := ns.mailer.Mail(ctx, toEmail, toName, subject, content.Body, html); err != nil {
		slog.Warn("Email send failed", "to", toEmail, "error", err)
		return
	}
	slog.Debug("Email sent", "to", toEmail)
}

// ============================================================
// NOTIFICATION EVENTS
// ============================================================

// NotifyExpenseAdded tells every other member about a new expense.
func (ns *NotificationService) NotifyExpenseAdded(ctx context.Context, household models.Household, expense models.Expense, actor models.User) error {
	recipients, err := otherMembers(ctx, household.ID, actor.ID)
	if err != nil {
		return err
	}
	return ns.Notify(ctx, recipients, models.Notification{
		HouseholdID: &household.ID,
		SenderID:    &actor.ID,
		SenderName:  actor.Name(),
		Type:        models.NotificationExpense,
		Title:       fmt.Sprintf("%s added an expense", actor.Name()),
		Message: fmt.Sprintf("\"%s\" for %s, paid by %s, split %d ways in %s",
			expense.Description, finance.FormatAmount(expense.Amount), expense.PaidBy, len(expense.Participants), household.Name),
		ReferenceID: &expense.ID,
	})
}

// NotifySettlement tells every other member that a suggested payment was made.
func (ns *NotificationService) NotifySettlement(ctx context.Context, household models.Household, expense models.Expense, s finance.Settlement, actor models.User) error {
	recipients, err := otherMembers(ctx, household.ID, actor.ID)
	if err != nil {
		return err
	}
	return ns.Notify(ctx, recipients, models.Notification{
		HouseholdID: &household.ID,
		SenderID:    &actor.ID,
		SenderName:  actor.Name(),
		Type:        models.NotificationSettlement,
		Title:       "Payment recorded",
		Message:     fmt.Sprintf("%s paid %s %s in %s", s.From, s.To, finance.FormatAmount(s.Amount), household.Name),
		ReferenceID: &expense.ID,
	})
}

// NotifyChoreAssigned tells the assignee about a chore someone else gave them.
func (ns *NotificationService) NotifyChoreAssigned(ctx context.Context, household models.Household, chore models.Chore, actor, assignee models.User) error {
	if assignee.ID == actor.ID {
		return nil
	}
	return ns.Notify(ctx, []models.User{assignee}, models.Notification{
		HouseholdID: &household.ID,
		SenderID:    &actor.ID,
		SenderName:  actor.Name(),
		Type:        models.NotificationChore,
		Title:       chore.Name,
		Message:     fmt.Sprintf("%s assigned you \"%s\", due %s", actor.Name(), chore.Name, chore.DueDate),
		ReferenceID: &chore.ID,
	})
}

// NotifyRoommateRequest asks recipient to join household.
func (ns *NotificationService) NotifyRoommateRequest(ctx context.Context, household models.Household, sender, recipient models.User) error {
	return ns.Notify(ctx, []models.User{recipient}, models.Notification{
		HouseholdID: &household.ID,
		SenderID:    &sender.ID,
		SenderName:  sender.Name(),
		Type:        models.NotificationRoommateRequest,
		Title:       "New roommate request",
		Message:     fmt.Sprintf("%s invited you to join %s", sender.Name(), household.Name),
		Status:      models.RequestPending,
	})
}

// SendInvitationEmail mails the household invite code to an address.
func (ns *NotificationService) SendInvitationEmail(household models.Household, inviter models.User, email string) {
	if ns.mailer == nil {
		slog.Info("Email disabled, skipping invitation", "to", email, "household_id", household.ID)
		return
	}
	subject := fmt.Sprintf("%s invited you to join \"%s\" on %s", inviter.Name(), household.Name, ns.appName)
	content := emailContent{
		Heading: "You're invited!",
		Body:    fmt.Sprintf("%s invited you to join \"%s\". Use this invite code to join:", inviter.Name(), household.Name),
		Code:    household.InviteCode,
		Link:    ns.appURL,
	}

	ns.wg.Add(1)
	go func() {
		defer ns.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		ns.sendEmail(ctx, email, "", subject, content)
	}()
}

func otherMembers(ctx context.Context, householdID, exclude uuid.UUID) ([]models.User, error) {
	members, err := HouseholdMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}
	out := members[:0]
	for _, m := range members {
		if m.ID != exclude {
			out = append(out, m)
		}
	}
	return out, nil
}
