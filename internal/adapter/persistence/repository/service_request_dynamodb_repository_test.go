package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDynamo struct {
	items        map[string]map[string]types.AttributeValue
	gets         []*dynamodb.GetItemInput
	putInput     *dynamodb.PutItemInput
	putErr       error
	transactions []*dynamodb.TransactWriteItemsInput
	transactErr  error
	batchGets    []*dynamodb.BatchGetItemInput
	updateInput  *dynamodb.UpdateItemInput
	updateErr    error
	queries      []*dynamodb.QueryInput
	pages        []*dynamodb.QueryOutput
}

func itemID(key map[string]types.AttributeValue) string {
	if s, ok := key["id"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) store(item map[string]types.AttributeValue) {
	if f.items == nil {
		f.items = map[string]map[string]types.AttributeValue{}
	}
	f.items[itemID(item)] = item
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = in
	if f.putErr == nil {
		f.store(in.Item)
	}
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	return &dynamodb.GetItemOutput{Item: f.items[itemID(in.Key)]}, nil
}

func (f *fakeDynamo) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.batchGets = append(f.batchGets, in)
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]types.AttributeValue{}}
	for table, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			if item, ok := f.items[itemID(key)]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transactions = append(f.transactions, in)
	if f.transactErr != nil {
		return nil, f.transactErr
	}
	for _, op := range in.TransactItems {
		switch {
		case op.Put != nil:
			f.store(op.Put.Item)
		case op.Delete != nil:
			delete(f.items, itemID(op.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInput = in
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if len(f.pages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, 0, len(codes))
	for _, c := range codes {
		reasons = append(reasons, types.CancellationReason{Code: aws.String(c)})
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func sampleRequest() entities.ServiceRequest {
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	return entities.ServiceRequest{
		ClientID:       1,
		ProfessionalID: 2,
		Description:    "Fix leak",
		Modality:       entities.ModalityOnSite,
		Address:        "Av X",
		District:       "Lima",
		ServiceDate:    at.Add(24 * time.Hour),
		Urgency:        entities.UrgencyNormal,
		State:          entities.StatePending,
		RequestedAt:    at,
		UpdatedAt:      at,
		Active:         true,
	}
}

func TestServiceRequestDynamoRepository_CreateAndDecode(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")

	created, err := repo.Create(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" || created.PhotoURLs == nil {
		t.Fatalf("expected generated id and empty photo list: %+v", created)
	}
	if fake.putInput != nil || len(fake.transactions) != 1 {
		t.Fatalf("expected a single transaction, got put=%+v transactions=%d", fake.putInput, len(fake.transactions))
	}
	ops := fake.transactions[0].TransactItems
	if len(ops) != 2 || ops[0].Put == nil || ops[1].Put == nil {
		t.Fatalf("expected request and lock puts, got %+v", ops)
	}
	for _, op := range ops {
		if aws.ToString(op.Put.TableName) != "sr_table" || aws.ToString(op.Put.ConditionExpression) != "attribute_not_exists(#id)" {
			t.Fatalf("unexpected put: %+v", op.Put)
		}
	}
	lock := ops[1].Put.Item
	if itemID(lock) != "pending#1#2" {
		t.Fatalf("unexpected lock id %q", itemID(lock))
	}
	if _, ok := lock["client_id"]; ok {
		t.Fatalf("lock item must stay out of the party indexes: %+v", lock)
	}
	if _, ok := lock["professional_id"]; ok {
		t.Fatalf("lock item must stay out of the party indexes: %+v", lock)
	}

	got, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID || got.State != entities.StatePending || !got.RequestedAt.Equal(created.RequestedAt) || got.RespondedAt != nil {
		t.Fatalf("unexpected decoded request: %+v", got)
	}

	got, err = repo.GetByID(context.Background(), "pending#1#2")
	if err != nil || got.ID != "" {
		t.Fatalf("lock item must not decode as a request, got %+v %v", got, err)
	}
}

func TestServiceRequestDynamoRepository_CreateDuplicatePair(t *testing.T) {
	fake := &fakeDynamo{transactErr: cancelled("None", "ConditionalCheckFailed")}
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")

	_, err := repo.Create(context.Background(), sampleRequest())
	if !errors.Is(err, interfaces.ErrPendingRequestExists) {
		t.Fatalf("expected ErrPendingRequestExists, got %v", err)
	}

	fake.transactErr = cancelled("ConditionalCheckFailed", "None")
	_, err = repo.Create(context.Background(), sampleRequest())
	if err == nil || errors.Is(err, interfaces.ErrPendingRequestExists) {
		t.Fatalf("expected id collision to surface as a plain error, got %v", err)
	}
}

func TestServiceRequestDynamoRepository_GetByIDMissing(t *testing.T) {
	repo := NewServiceRequestDynamoRepository(&fakeDynamo{}, "sr_table")
	got, err := repo.GetByID(context.Background(), "nope")
	if err != nil || got.ID != "" {
		t.Fatalf("expected zero value, got %+v %v", got, err)
	}
}

func TestFromServiceRequestItem_RejectsCorruptRows(t *testing.T) {
	base := toServiceRequestItem(sampleRequest())

	bad := base
	bad.State = "archived"
	if _, err := fromServiceRequestItem(bad); err == nil || !strings.Contains(err.Error(), "state") {
		t.Fatalf("expected state decode error, got %v", err)
	}

	bad = base
	bad.RequestedAt = "yesterday"
	if _, err := fromServiceRequestItem(bad); err == nil || !strings.Contains(err.Error(), "requested_at") {
		t.Fatalf("expected requested_at decode error, got %v", err)
	}

	ok, err := fromServiceRequestItem(base)
	if err != nil || ok.PhotoURLs == nil {
		t.Fatalf("expected normalised photo list, got %+v %v", ok, err)
	}
}

func TestServiceRequestDynamoRepository_ListByClient(t *testing.T) {
	newer := sampleRequest()
	newer.ID = "b"
	newer.RequestedAt = newer.RequestedAt.Add(time.Minute)
	older := sampleRequest()
	older.ID = "a"

	rawNewer, _ := attributevalue.MarshalMap(toServiceRequestItem(newer))
	rawOlder, _ := attributevalue.MarshalMap(toServiceRequestItem(older))

	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{rawNewer}, LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "b"}}},
		{Items: []map[string]types.AttributeValue{rawOlder}},
	}}
	fake.store(rawOlder)
	fake.store(rawNewer)
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")

	items, err := repo.ListByClient(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if len(fake.queries) != 2 {
		t.Fatalf("expected two pages to be read, got %d", len(fake.queries))
	}
	q := fake.queries[0]
	if aws.ToString(q.IndexName) != serviceRequestsClientIndex || aws.ToBool(q.ScanIndexForward) || aws.ToString(q.FilterExpression) != "#active = :true" {
		t.Fatalf("unexpected query: %+v", q)
	}
	if len(fake.batchGets) != 1 || !aws.ToBool(fake.batchGets[0].RequestItems["sr_table"].ConsistentRead) {
		t.Fatalf("expected one consistent batch read, got %+v", fake.batchGets)
	}
}

func TestServiceRequestDynamoRepository_ListDropsRowsTheIndexStillShowsActive(t *testing.T) {
	kept := sampleRequest()
	kept.ID = "kept"
	stale := sampleRequest()
	stale.ID = "stale"
	stale.RequestedAt = stale.RequestedAt.Add(time.Minute)

	rawKept, _ := attributevalue.MarshalMap(toServiceRequestItem(kept))
	rawStale, _ := attributevalue.MarshalMap(toServiceRequestItem(stale))

	cancelledNow := stale
	cancelledNow.State = entities.StateCancelled
	cancelledNow.Active = false
	rawCancelled, _ := attributevalue.MarshalMap(toServiceRequestItem(cancelledNow))

	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{rawStale, rawKept}},
	}}
	fake.store(rawKept)
	fake.store(rawCancelled)
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")

	items, err := repo.ListByProfessional(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "kept" {
		t.Fatalf("expected only the active row, got %+v", items)
	}
}

func TestServiceRequestDynamoRepository_CountPendingReadsThePairLock(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")
	ctx := context.Background()

	n, err := repo.CountPending(ctx, 1, 2)
	if err != nil || n != 0 {
		t.Fatalf("expected 0, got %d %v", n, err)
	}

	if _, err := repo.Create(ctx, sampleRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err = repo.CountPending(ctx, 1, 2)
	if err != nil || n != 1 {
		t.Fatalf("expected 1, got %d %v", n, err)
	}

	if len(fake.queries) != 0 {
		t.Fatalf("duplicate guard must not read an index, got %d queries", len(fake.queries))
	}
	for _, g := range fake.gets {
		if !aws.ToBool(g.ConsistentRead) || itemID(g.Key) != "pending#1#2" {
			t.Fatalf("unexpected read: %+v", g)
		}
	}
}

func TestServiceRequestDynamoRepository_CountPendingByProfessional(t *testing.T) {
	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{
		{Count: 2, LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "x"}}},
		{Count: 1},
	}}
	repo := NewServiceRequestDynamoRepository(fake, "sr_table")

	n, err := repo.CountPendingByProfessional(context.Background(), 2)
	if err != nil || n != 3 {
		t.Fatalf("expected 3, got %d %v", n, err)
	}
	q := fake.queries[0]
	if q.Select != types.SelectCount || aws.ToString(q.IndexName) != serviceRequestsProfessionalIndex {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestServiceRequestDynamoRepository_UpdateState(t *testing.T) {
	seeded := func(t *testing.T) (*fakeDynamo, *ServiceRequestDynamoRepository, string) {
		t.Helper()
		fake := &fakeDynamo{}
		repo := NewServiceRequestDynamoRepository(fake, "sr_table")
		created, err := repo.Create(context.Background(), sampleRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fake.transactions = nil
		return fake, repo, created.ID
	}

	t.Run("leaving pending releases the pair lock", func(t *testing.T) {
		fake, repo, id := seeded(t)

		ok, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{
			ID:               id,
			ExpectedState:    entities.StatePending,
			ExpectedClientID: 1,
			NewState:         entities.StateCancelled,
			At:               time.Now(),
			Deactivate:       true,
		})
		if err != nil || !ok {
			t.Fatalf("expected applied update, got %v %v", ok, err)
		}
		if fake.updateInput != nil || len(fake.transactions) != 1 {
			t.Fatalf("expected one transaction and no standalone update")
		}
		ops := fake.transactions[0].TransactItems
		if len(ops) != 2 || ops[0].Update == nil || ops[1].Delete == nil {
			t.Fatalf("expected update plus lock delete, got %+v", ops)
		}
		upd := ops[0].Update
		if !strings.Contains(aws.ToString(upd.UpdateExpression), "#active = :false") || strings.Contains(aws.ToString(upd.UpdateExpression), "#responded_at") {
			t.Fatalf("unexpected update expression %q", aws.ToString(upd.UpdateExpression))
		}
		cond := aws.ToString(upd.ConditionExpression)
		if !strings.Contains(cond, "#state = :expected_state") || !strings.Contains(cond, "#client_id = :client") || strings.Contains(cond, "#professional_id") {
			t.Fatalf("unexpected condition %q", cond)
		}
		del := ops[1].Delete
		if itemID(del.Key) != "pending#1#2" || !strings.Contains(aws.ToString(del.ConditionExpression), "#request_id = :request_id") {
			t.Fatalf("unexpected lock delete: %+v", del)
		}

		n, err := repo.CountPending(context.Background(), 1, 2)
		if err != nil || n != 0 {
			t.Fatalf("expected released lock, got %d %v", n, err)
		}
	})

	t.Run("request condition failed", func(t *testing.T) {
		fake, repo, id := seeded(t)
		fake.transactErr = cancelled("ConditionalCheckFailed", "None")

		ok, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{ID: id, ExpectedState: entities.StatePending, NewState: entities.StateAccepted, At: time.Now(), SetRespondedAt: true})
		if err != nil || ok {
			t.Fatalf("expected no-match, got %v %v", ok, err)
		}
	})

	t.Run("lock held by another request", func(t *testing.T) {
		fake, repo, id := seeded(t)
		fake.transactErr = cancelled("None", "ConditionalCheckFailed")

		if _, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{ID: id, ExpectedState: entities.StatePending, NewState: entities.StateRejected, At: time.Now()}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing request", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := NewServiceRequestDynamoRepository(fake, "sr_table")

		ok, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{ID: "nope", ExpectedState: entities.StatePending, NewState: entities.StateAccepted, At: time.Now()})
		if err != nil || ok || len(fake.transactions) != 0 {
			t.Fatalf("expected no-match without writes, got %v %v", ok, err)
		}
	})

	t.Run("conditional update outside pending", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := NewServiceRequestDynamoRepository(fake, "sr_table")

		ok, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{
			ID:                     "sr-1",
			ExpectedState:          entities.StateAccepted,
			ExpectedProfessionalID: 2,
			NewState:               entities.StateCompleted,
			At:                     time.Now(),
			Deactivate:             true,
		})
		if err != nil || !ok || len(fake.transactions) != 0 {
			t.Fatalf("expected applied single update, got %v %v", ok, err)
		}
		if !strings.Contains(aws.ToString(fake.updateInput.ConditionExpression), "#professional_id = :professional") {
			t.Fatalf("unexpected condition %q", aws.ToString(fake.updateInput.ConditionExpression))
		}
	})

	t.Run("condition failed", func(t *testing.T) {
		fake := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{}}
		repo := NewServiceRequestDynamoRepository(fake, "sr_table")

		ok, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{ID: "sr-1", ExpectedState: entities.StateAccepted, NewState: entities.StateCompleted, At: time.Now()})
		if err != nil || ok {
			t.Fatalf("expected no-match, got %v %v", ok, err)
		}
	})

	t.Run("other error", func(t *testing.T) {
		fake := &fakeDynamo{updateErr: errors.New("throttled")}
		repo := NewServiceRequestDynamoRepository(fake, "sr_table")

		if _, err := repo.UpdateState(context.Background(), interfaces.StateUpdate{ID: "sr-1", ExpectedState: entities.StateAccepted, NewState: entities.StateCompleted}); err == nil {
			t.Fatalf("expected error")
		}
	})
}
