package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"gw-fund-subscriptions/internal/storages"
)

// AppendEntry атомарно добавляет запись в журнал через TransactWriteItems.
// Запись пользователя хранит ID последней записи журнала по каждому фонду,
// условие на нем и на балансе закрывает гонку чтения и записи.
func (s *DynamoStorage) AppendEntry(ctx context.Context, w *storages.LedgerWrite) error {
	now := time.Now().UTC()
	if w.Entry.CreatedAt.IsZero() {
		w.Entry.CreatedAt = now
	}

	input := buildLedgerWrite(&s.cfg, w, now)

	_, err := s.client.TransactWriteItems(ctx, input)
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				switch aws.ToString(reason.Code) {
				case "ConditionalCheckFailed", "TransactionConflict":
					s.logger.Debugf("Ledger write rejected for %s/%s: %s",
						w.Entry.User, w.Entry.Fondo, aws.ToString(reason.Code))
					return storages.ErrConflict
				}
			}
		}

		s.logger.Errorf("Failed to append ledger entry: %v", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	s.logger.Infof("Appended ledger entry: ID=%s, Type=%s, User=%s, Fund=%s, Amount=%s",
		w.Entry.ID, w.Entry.TipoTransaccion, w.Entry.User, w.Entry.Fondo, w.Entry.Monto)
	return nil
}

func buildLedgerWrite(cfg *Config, w *storages.LedgerWrite, now time.Time) *dynamodb.TransactWriteItemsInput {
	names := map[string]string{"#h": headAttribute(w.Entry.Fondo)}
	values := map[string]types.AttributeValue{
		":expected": numberValue(w.ExpectedSaldo),
		":id":       stringValue(w.Entry.ID),
		":now":      timeValue(now),
	}

	update := "SET #h = :id, updated_at = :now"
	if w.NewSaldo != nil {
		update += ", saldo = :saldo"
		values[":saldo"] = numberValue(*w.NewSaldo)
	}

	condition := "saldo = :expected"
	if w.CheckHead {
		if w.ExpectedHead == "" {
			condition += " AND attribute_not_exists(#h)"
		} else {
			// Записи, созданные до появления атрибута, не имеют его
			condition += " AND (attribute_not_exists(#h) OR #h = :head)"
			values[":head"] = stringValue(w.ExpectedHead)
		}
	}

	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:                 aws.String(cfg.UsersTable),
					Key:                       userKey(w.User),
					UpdateExpression:          aws.String(update),
					ConditionExpression:       aws.String(condition),
					ExpressionAttributeNames:  names,
					ExpressionAttributeValues: values,
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(cfg.TransactionsTable),
					Item:                encodeTransaction(&w.Entry),
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}
}
