package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/notification"
	"gw-fund-subscriptions/internal/storages"
)

// Publisher канал публикации уведомлений о подписке
type Publisher interface {
	Publish(ctx context.Context, event *notification.Event) error
}

// FundService сервисный слой для бизнес-логики
type FundService struct {
	storage       storages.Storage
	publisher     Publisher
	metrics       *metrics.Metrics
	logger        *logrus.Logger
	retryAttempts int

	now   func() time.Time
	newID func() string
}

// NewFundService создает новый экземпляр сервиса
func NewFundService(
	storage storages.Storage,
	publisher Publisher,
	m *metrics.Metrics,
	retryAttempts int,
	logger *logrus.Logger,
) *FundService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}

	return &FundService{
		storage:       storage,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
		retryAttempts: retryAttempts,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// SubscriptionResult результат подписки
type SubscriptionResult struct {
	Subscribed    bool
	TransactionID string
	Fondo         string
	Monto         decimal.Decimal
	Message       string
}

// ListFunds возвращает каталог фондов
func (s *FundService) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	funds, err := s.storage.ListFunds(ctx)
	if err != nil {
		return nil, storeError("list funds", err)
	}
	return funds, nil
}

// Subscribe подписывает пользователя на фонд
func (s *FundService) Subscribe(ctx context.Context, req *SubscribeRequest) (*SubscriptionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		result *SubscriptionResult
		event  *notification.Event
	)

	err := s.withRetry(ctx, "subscribe", func() error {
		var err error
		result, event, err = s.trySubscribe(ctx, req)
		return err
	})
	if err != nil {
		s.metrics.Subscription(metrics.OutcomeFailed)
		return nil, err
	}

	if !result.Subscribed {
		s.metrics.Subscription(metrics.OutcomeInsufficient)
		s.logger.Infof("Insufficient balance: user=%s, fund=%s", req.Cedula, result.Fondo)
		return result, nil
	}

	s.metrics.Subscription(metrics.OutcomeSubscribed)
	s.metrics.LedgerEntry(storages.TipoApertura)
	s.logger.Infof("User %s subscribed to fund %s: tx=%s, amount=%s",
		req.Cedula, result.Fondo, result.TransactionID, result.Monto)

	// Запись в журнал уже выполнена: ошибка публикации не откатывает ее
	s.publish(ctx, event)

	return result, nil
}

func (s *FundService) trySubscribe(ctx context.Context, req *SubscribeRequest) (*SubscriptionResult, *notification.Event, error) {
	user, err := s.ensureUser(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	fund, err := s.storage.GetFund(ctx, req.Fondo.Nombre, req.Fondo.Categoria)
	if errors.Is(err, storages.ErrNotFound) {
		return nil, nil, ErrFundNotFound
	}
	if err != nil {
		return nil, nil, storeError("get fund", err)
	}

	if user.Saldo.LessThan(fund.MontoMinimo) {
		return &SubscriptionResult{
			Fondo:   fund.Nombre,
			Message: fmt.Sprintf("No tiene saldo disponible para vincularse al fondo %s", fund.Nombre),
		}, nil, nil
	}

	amount := user.Saldo
	if req.Saldo != nil {
		amount = *req.Saldo
	}

	write := &storages.LedgerWrite{
		Entry: storages.Transaction{
			ID:              s.newID(),
			User:            user.Cedula,
			Fondo:           fund.Nombre,
			TipoTransaccion: storages.TipoApertura,
			Monto:           amount,
			CreatedAt:       s.now(),
		},
		User:          user.Key(),
		ExpectedSaldo: user.Saldo,
	}

	if err := s.appendEntry(ctx, write); err != nil {
		return nil, nil, err
	}

	result := &SubscriptionResult{
		Subscribed:    true,
		TransactionID: write.Entry.ID,
		Fondo:         fund.Nombre,
		Monto:         amount,
		Message:       fmt.Sprintf("Suscripción exitosa al fondo %s", fund.Nombre),
	}

	event := &notification.Event{
		TransactionID: write.Entry.ID,
		User:          user.Cedula,
		Correo:        user.Correo,
		Telefono:      user.Telefono,
		Fondo:         fund.Nombre,
		Categoria:     fund.Categoria,
		Monto:         amount,
		Timestamp:     write.Entry.CreatedAt,
	}

	return result, event, nil
}

// ensureUser возвращает пользователя, создавая его при первом обращении
func (s *FundService) ensureUser(ctx context.Context, req *SubscribeRequest) (*storages.User, error) {
	key := storages.UserKey{Cedula: req.Cedula, Correo: req.Correo}

	user, err := s.storage.GetUser(ctx, key)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storages.ErrNotFound) {
		return nil, storeError("get user", err)
	}

	saldo := decimal.Zero
	if req.Saldo != nil {
		saldo = *req.Saldo
	}

	user = &storages.User{
		Cedula:   req.Cedula,
		Correo:   req.Correo,
		Telefono: req.Telefono,
		Saldo:    saldo,
	}

	err = s.storage.CreateUser(ctx, user)
	if errors.Is(err, storages.ErrAlreadyExists) {
		// Пользователь создан параллельным запросом
		user, err = s.storage.GetUser(ctx, key)
		if err != nil {
			return nil, storeError("get user", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, storeError("create user", err)
	}

	return user, nil
}

// RecordTransaction записывает операцию по позиции пользователя в фонде
func (s *FundService) RecordTransaction(ctx context.Context, req *TransactionRequest) (*storages.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var entry *storages.Transaction
	err := s.withRetry(ctx, "record transaction", func() error {
		var err error
		entry, err = s.tryRecord(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LedgerEntry(metricKind(entry.TipoTransaccion))
	s.logger.Infof("Recorded %s for user %s in fund %s: tx=%s, amount=%s",
		entry.TipoTransaccion, entry.User, entry.Fondo, entry.ID, entry.Monto)

	return entry, nil
}

func (s *FundService) tryRecord(ctx context.Context, req *TransactionRequest) (*storages.Transaction, error) {
	user, err := s.storage.FindUserByCedula(ctx, req.Cedula)
	if errors.Is(err, storages.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeError("find user", err)
	}

	entries, err := s.storage.ListPositionEntries(ctx, user.Cedula, req.Fondo)
	if err != nil {
		return nil, storeError("read position", err)
	}

	pos := DerivePosition(entries)
	amount := CumulativeAmount(req.Operacion, *req.Monto, pos)

	write := &storages.LedgerWrite{
		Entry: storages.Transaction{
			ID:              s.newID(),
			User:            user.Cedula,
			Fondo:           req.Fondo,
			TipoTransaccion: req.Operacion,
			Monto:           amount,
			CreatedAt:       s.now(),
		},
		User:          user.Key(),
		ExpectedSaldo: user.Saldo,
		CheckHead:     true,
		ExpectedHead:  pos.Head,
	}

	if strings.EqualFold(req.Operacion, storages.TipoCancelacion) {
		refunded := user.Saldo.Add(amount)
		write.NewSaldo = &refunded
	}

	if err := s.appendEntry(ctx, write); err != nil {
		return nil, err
	}

	return &write.Entry, nil
}

// ListTransactions возвращает журнал операций пользователя
func (s *FundService) ListTransactions(ctx context.Context, user string) ([]storages.Transaction, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, &ValidationError{Message: "Missing user parameter", Missing: []string{"user"}}
	}

	transactions, err := s.storage.ListUserTransactions(ctx, user)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return transactions, nil
}

func (s *FundService) appendEntry(ctx context.Context, write *storages.LedgerWrite) error {
	err := s.storage.AppendEntry(ctx, write)
	if err == nil || errors.Is(err, storages.ErrConflict) {
		return err
	}
	return storeError("append ledger entry", err)
}

// withRetry повторяет операцию, пока условная запись отклоняется конкурентным изменением
func (s *FundService) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, storages.ErrConflict) {
			return err
		}

		s.metrics.Conflict()
		if attempt >= s.retryAttempts {
			s.logger.Errorf("%s: giving up after %d conflicting attempts", op, attempt)
			return err
		}

		s.logger.Warnf("Attempt %d/%d: %s hit a concurrent update, retrying", attempt, s.retryAttempts, op)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *FundService) publish(ctx context.Context, event *notification.Event) {
	if s.publisher == nil || event == nil {
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.Notification(metrics.StatusFailed)
		s.logger.WithFields(logrus.Fields{
			"transaction_id": event.TransactionID,
			"user":           event.User,
			"fondo":          event.Fondo,
		}).Warnf("Failed to publish subscription notification: %v", err)
		return
	}

	s.metrics.Notification(metrics.StatusPublished)
}
