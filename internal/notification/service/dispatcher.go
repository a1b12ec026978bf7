package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	consumerdomain "github.com/voltmesh/gridadmin/internal/consumer/domain"
	"github.com/voltmesh/gridadmin/internal/notification/domain"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
	"github.com/voltmesh/gridadmin/internal/providers/email"
	"github.com/voltmesh/gridadmin/internal/providers/sms"
	"github.com/voltmesh/gridadmin/internal/ratelimit"
	"github.com/voltmesh/gridadmin/internal/ws"
	"github.com/voltmesh/gridadmin/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ConsumerRepo consumerdomain.Repository
	Email        email.Provider
	SMS          sms.Provider
	Metrics      *metrics.Metrics
	Hub          *ws.Hub                  `optional:"true"`
	Limiter      *ratelimit.NotifyLimiter `optional:"true"`
}

type dispatcher struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	consumerRepo consumerdomain.Repository
	email        email.Provider
	sms          sms.Provider
	metrics      *metrics.Metrics
	hub          *ws.Hub
	limiter      *ratelimit.NotifyLimiter
}

func New(p Params) domain.Dispatcher {
	return &dispatcher{
		db:           p.DB,
		log:          p.Log.Named("notification.dispatcher"),
		genID:        p.GenID,
		repo:         p.Repo,
		consumerRepo: p.ConsumerRepo,
		email:        p.Email,
		sms:          p.SMS,
		metrics:      p.Metrics,
		hub:          p.Hub,
		limiter:      p.Limiter,
	}
}

func (d *dispatcher) Raise(ctx context.Context, kind domain.Kind, nctx domain.Context) (*domain.DispatchResult, error) {
	title, message, err := format(kind, nctx)
	if err != nil {
		return nil, err
	}

	var consumerID snowflake.ID
	if nctx.ConsumerID != "" {
		consumerID, err = domain.ParseID(nctx.ConsumerID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
	}

	notification := &domain.Notification{
		ID:             d.genID.Generate(),
		Type:           string(kind),
		Title:          title,
		Message:        message,
		Priority:       domain.KindPriority(kind),
		Channels:       joinChannels(domain.ChannelPush, domain.ChannelEmail, domain.ChannelSMS),
		Status:         domain.StatusPending,
		ConsumerID:     consumerID,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	}

	// The row must exist before any delivery is attempted. If this insert
	// fails nothing goes out.
	if err := d.repo.Insert(ctx, d.db, notification); err != nil {
		d.log.Error("persist notification", zap.Error(err))
		return nil, err
	}

	result := &domain.DispatchResult{
		NotificationID: notification.ID.String(),
		Recorded:       true,
		Channels:       make(map[domain.Channel]domain.ChannelOutcome),
	}

	if d.limiter != nil && !d.limiter.Allow(ctx, string(notification.Priority)) {
		d.log.Warn("dispatch rate limited",
			zap.String("kind", string(kind)),
			zap.String("priority", string(notification.Priority)),
		)
		d.metrics.IncDispatch(string(kind), "rate_limited")
		return result, nil
	}

	d.deliver(ctx, notification, consumerID, result)

	attempted, failed := tally(result)
	switch {
	case attempted == 0:
		// Stays PENDING.
	case failed == 0:
		now := time.Now().UTC()
		result.Delivered = true
		if err := d.repo.UpdateStatus(ctx, d.db, notification.ID, domain.StatusSent, &now); err != nil {
			d.log.Warn("mark notification sent", zap.Error(err))
		}
	default:
		if err := d.repo.UpdateStatus(ctx, d.db, notification.ID, domain.StatusFailed, nil); err != nil {
			d.log.Warn("mark notification failed", zap.Error(err))
		}
	}

	outcome := "recorded"
	if result.Delivered {
		outcome = "delivered"
	} else if failed > 0 {
		outcome = "delivery_failed"
	}
	d.metrics.IncDispatch(string(kind), outcome)

	return result, nil
}

func (d *dispatcher) deliver(ctx context.Context, notification *domain.Notification, consumerID snowflake.ID, result *domain.DispatchResult) {
	payload := toResponse(notification)

	// Push: at-most-once to whoever is connected right now.
	if d.hub != nil && consumerID != 0 {
		d.hub.BroadcastRoom(ws.UserRoom(consumerID.String()), ws.EventNotification, payload)
		result.Channels[domain.ChannelPush] = domain.OutcomeDelivered
		d.metrics.IncDelivery("push", "delivered")
	} else {
		result.Channels[domain.ChannelPush] = domain.OutcomeSkipped
		d.metrics.IncDelivery("push", "skipped")
	}

	var consumer *consumerdomain.Consumer
	if consumerID != 0 {
		found, err := d.consumerRepo.FindByID(ctx, d.db, consumerID)
		if err != nil {
			d.log.Warn("load consumer for delivery", zap.Error(err))
		} else {
			consumer = found
		}
	}

	if consumer != nil && consumer.Email != "" {
		err := d.email.Send(ctx, []string{consumer.Email}, notification.Title, notification.Message)
		if err != nil {
			d.log.Warn("email delivery failed",
				zap.String("notification_id", notification.ID.String()),
				zap.Error(err),
			)
			result.Channels[domain.ChannelEmail] = domain.OutcomeFailed
			d.metrics.IncDelivery("email", "failed")
		} else {
			result.Channels[domain.ChannelEmail] = domain.OutcomeDelivered
			d.metrics.IncDelivery("email", "delivered")
		}
	} else {
		result.Channels[domain.ChannelEmail] = domain.OutcomeSkipped
		d.metrics.IncDelivery("email", "skipped")
	}

	if consumer != nil && consumer.Phone != "" {
		err := d.sms.Send(ctx, consumer.Phone, notification.Title+": "+notification.Message)
		if err != nil {
			d.log.Warn("sms delivery failed",
				zap.String("notification_id", notification.ID.String()),
				zap.Error(err),
			)
			result.Channels[domain.ChannelSMS] = domain.OutcomeFailed
			d.metrics.IncDelivery("sms", "failed")
		} else {
			result.Channels[domain.ChannelSMS] = domain.OutcomeDelivered
			d.metrics.IncDelivery("sms", "delivered")
		}
	} else {
		result.Channels[domain.ChannelSMS] = domain.OutcomeSkipped
		d.metrics.IncDelivery("sms", "skipped")
	}
}

func (d *dispatcher) Announce(ctx context.Context, req domain.AnnounceRequest) (*domain.DispatchResult, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return nil, domain.ErrInvalidInput
	}

	notification := &domain.Notification{
		ID:             d.genID.Generate(),
		Type:           string(domain.KindAnnouncement),
		Title:          title,
		Message:        message,
		Priority:       domain.PriorityMedium,
		Channels:       string(domain.ChannelPush),
		Status:         domain.StatusPending,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
	}

	if err := d.repo.Insert(ctx, d.db, notification); err != nil {
		d.log.Error("persist announcement", zap.Error(err))
		return nil, err
	}

	result := &domain.DispatchResult{
		NotificationID: notification.ID.String(),
		Recorded:       true,
		Channels:       make(map[domain.Channel]domain.ChannelOutcome),
	}

	if d.hub != nil {
		payload := toResponse(notification)
		if len(req.Roles) == 0 {
			d.hub.BroadcastAll(ws.EventAnnouncement, payload)
		} else {
			for _, role := range req.Roles {
				d.hub.BroadcastRoom(ws.RoleRoom(role), ws.EventAnnouncement, payload)
			}
		}
		result.Channels[domain.ChannelPush] = domain.OutcomeDelivered
		result.Delivered = true

		now := time.Now().UTC()
		if err := d.repo.UpdateStatus(ctx, d.db, notification.ID, domain.StatusSent, &now); err != nil {
			d.log.Warn("mark announcement sent", zap.Error(err))
		}
	} else {
		result.Channels[domain.ChannelPush] = domain.OutcomeSkipped
	}

	d.metrics.IncDispatch(string(domain.KindAnnouncement), "delivered")
	return result, nil
}

func (d *dispatcher) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page := req.Page.Normalize()

	notifications, total, err := d.repo.List(ctx, d.db, domain.ListFilter{
		Type:     strings.TrimSpace(req.Type),
		Status:   strings.ToUpper(strings.TrimSpace(req.Status)),
		Priority: strings.ToUpper(strings.TrimSpace(req.Priority)),
		Page:     page,
	})
	if err != nil {
		d.log.Error("list notifications", zap.Error(err))
		return nil, err
	}

	items := make([]domain.Response, 0, len(notifications))
	for i := range notifications {
		items = append(items, *toResponse(&notifications[i]))
	}

	return &domain.ListResponse{
		Notifications: items,
		Pagination:    pagination.BuildPageInfo(page, total),
	}, nil
}

func (d *dispatcher) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	notificationID, err := domain.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	notification, err := d.repo.FindByID(ctx, d.db, notificationID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, domain.ErrNotFound
	}

	return toResponse(notification), nil
}

func format(kind domain.Kind, nctx domain.Context) (title, message string, err error) {
	site := describeSite(nctx)
	switch kind {
	case domain.KindZeroValueAlert:
		title = fmt.Sprintf("Zero value reading on meter %s", nctx.MeterSerial)
		message = fmt.Sprintf("Meter %s%s reported a zero value reading.", nctx.MeterSerial, site)
	case domain.KindPowerFailureAlert:
		title = fmt.Sprintf("Power failure at meter %s", nctx.MeterSerial)
		message = fmt.Sprintf("Power failure detected at meter %s%s.", nctx.MeterSerial, site)
	case domain.KindMeterAbnormalityAlert:
		title = fmt.Sprintf("Abnormal readings on meter %s", nctx.MeterSerial)
		message = fmt.Sprintf("Meter %s%s is reporting abnormal readings.", nctx.MeterSerial, site)
		if nctx.Detail != "" {
			message += " " + nctx.Detail
		}
	case domain.KindLowBalanceAlert:
		title = fmt.Sprintf("Low balance on account %s", nctx.AccountNumber)
		message = fmt.Sprintf("Prepaid account %s balance is down to %.2f. Please recharge soon.", nctx.AccountNumber, nctx.Balance)
	case domain.KindEmergencyLowAlert:
		title = fmt.Sprintf("Balance critical on account %s", nctx.AccountNumber)
		message = fmt.Sprintf("Prepaid account %s balance %.2f is critically low. Supply may be disconnected.", nctx.AccountNumber, nctx.Balance)
	default:
		return "", "", domain.ErrInvalidKind
	}
	return title, message, nil
}

func describeSite(nctx domain.Context) string {
	var parts []string
	if nctx.FeederName != "" {
		parts = append(parts, "feeder "+nctx.FeederName)
	}
	if nctx.DTRName != "" {
		parts = append(parts, "DTR "+nctx.DTRName)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func tally(result *domain.DispatchResult) (attempted, failed int) {
	for _, outcome := range result.Channels {
		switch outcome {
		case domain.OutcomeDelivered:
			attempted++
		case domain.OutcomeFailed:
			attempted++
			failed++
		}
	}
	return attempted, failed
}

func joinChannels(channels ...domain.Channel) string {
	parts := make([]string, 0, len(channels))
	for _, channel := range channels {
		parts = append(parts, string(channel))
	}
	return strings.Join(parts, ",")
}

func toResponse(notification *domain.Notification) *domain.Response {
	resp := &domain.Response{
		ID:          notification.ID.String(),
		Type:        notification.Type,
		Title:       notification.Title,
		Message:     notification.Message,
		Priority:    notification.Priority,
		Channels:    splitChannels(notification.Channels),
		Status:      notification.Status,
		DeliveredAt: notification.DeliveredAt,
		CreatedAt:   notification.CreatedAt,
	}
	if notification.ConsumerID != 0 {
		resp.ConsumerID = notification.ConsumerID.String()
	}
	return resp
}

func splitChannels(value string) []domain.Channel {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	channels := make([]domain.Channel, 0, len(parts))
	for _, part := range parts {
		channels = append(channels, domain.Channel(strings.TrimSpace(part)))
	}
	return channels
}
