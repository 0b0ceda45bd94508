package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	defaultServiceRequestsTableName  = "service_requests"
	serviceRequestsClientIndex       = "client_id-requested_at-index"
	serviceRequestsProfessionalIndex = "professional_id-requested_at-index"

	pendingPairLockPrefix  = "pending#"
	maxBatchGetKeys        = 100
	maxBatchGetAttempts    = 5
	conditionalCheckFailed = "ConditionalCheckFailed"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type serviceRequestItem struct {
	ID              string   `dynamodbav:"id"`
	ClientID        int64    `dynamodbav:"client_id"`
	ProfessionalID  int64    `dynamodbav:"professional_id"`
	Description     string   `dynamodbav:"description"`
	EstimatedBudget string   `dynamodbav:"estimated_budget"`
	Modality        string   `dynamodbav:"modality"`
	Address         string   `dynamodbav:"address"`
	District        string   `dynamodbav:"district"`
	PostalCode      string   `dynamodbav:"postal_code,omitempty"`
	Reference       string   `dynamodbav:"reference,omitempty"`
	ServiceDate     string   `dynamodbav:"service_date"`
	Urgency         string   `dynamodbav:"urgency"`
	AdditionalNotes string   `dynamodbav:"additional_notes,omitempty"`
	PhotoURLs       []string `dynamodbav:"photo_urls"`
	State           string   `dynamodbav:"state"`
	RequestedAt     string   `dynamodbav:"requested_at"`
	RespondedAt     string   `dynamodbav:"responded_at,omitempty"`
	UpdatedAt       string   `dynamodbav:"updated_at"`
	Active          bool     `dynamodbav:"active"`
}

// pendingPairLockItem marks that a client already has a pending request with a
// professional. It has no client_id/professional_id attributes, so it never
// shows up in the party indexes.
type pendingPairLockItem struct {
	ID        string `dynamodbav:"id"`
	RequestID string `dynamodbav:"request_id"`
}

// ServiceRequestDynamoRepository persists ServiceRequest entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: client_id-requested_at-index (PK: client_id number, SK: requested_at string)
//   - GSI: professional_id-requested_at-index (PK: professional_id number, SK: requested_at string)
//
// Inactive rows stay in the table and in both indexes; listings filter them out.
//
// A pending request owns a lock item "pending#<client>#<professional>" in the same
// table. It is written in the same transaction as the request and deleted in the
// same transaction as the update that moves the request out of pending, so the
// pair check reads the base table with ConsistentRead and never an index.
type ServiceRequestDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IServiceRequestRepository = (*ServiceRequestDynamoRepository)(nil)

func NewServiceRequestDynamoRepository(ddb DynamoDBAPI, tableName string) *ServiceRequestDynamoRepository {
	if tableName == "" {
		tableName = getenvDefault("SERVICE_REQUESTS_TABLE", defaultServiceRequestsTableName)
	}
	return &ServiceRequestDynamoRepository{
		ddb:       ddb,
		tableName: tableName,
	}
}

func pendingPairLockID(clientID, professionalID int64) string {
	return pendingPairLockPrefix + strconv.FormatInt(clientID, 10) + "#" + strconv.FormatInt(professionalID, 10)
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (r *ServiceRequestDynamoRepository) Create(ctx context.Context, sr entities.ServiceRequest) (entities.ServiceRequest, error) {
	if sr.ID == "" {
		sr.ID = uuid.NewString()
	}
	if sr.PhotoURLs == nil {
		sr.PhotoURLs = []string{}
	}

	av, err := attributevalue.MarshalMap(toServiceRequestItem(sr))
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	notExists := aws.String("attribute_not_exists(#id)")
	idName := map[string]string{"#id": "id"}

	if sr.State != entities.StatePending || !sr.Active {
		_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.tableName),
			Item:                     av,
			ConditionExpression:      notExists,
			ExpressionAttributeNames: idName,
		})
		if err != nil {
			return entities.ServiceRequest{}, err
		}
		return sr, nil
	}

	lock, err := attributevalue.MarshalMap(pendingPairLockItem{
		ID:        pendingPairLockID(sr.ClientID, sr.ProfessionalID),
		RequestID: sr.ID,
	})
	if err != nil {
		return entities.ServiceRequest{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     av,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: idName,
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     lock,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: idName,
			}},
		},
	})
	if err != nil {
		if reasons := cancellationReasons(err); len(reasons) == 2 && reasons[1] == conditionalCheckFailed {
			return entities.ServiceRequest{}, interfaces.ErrPendingRequestExists
		}
		return entities.ServiceRequest{}, err
	}
	return sr, nil
}

func (r *ServiceRequestDynamoRepository) GetByID(ctx context.Context, id string) (entities.ServiceRequest, error) {
	if strings.HasPrefix(id, pendingPairLockPrefix) {
		return entities.ServiceRequest{}, nil
	}
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	if len(out.Item) == 0 {
		return entities.ServiceRequest{}, nil
	}
	return decodeServiceRequestItem(out.Item)
}

func (r *ServiceRequestDynamoRepository) ListByClient(ctx context.Context, clientID int64) ([]entities.ServiceRequest, error) {
	return r.listActive(ctx, serviceRequestsClientIndex, "client_id", clientID)
}

func (r *ServiceRequestDynamoRepository) ListByProfessional(ctx context.Context, professionalID int64) ([]entities.ServiceRequest, error) {
	return r.listActive(ctx, serviceRequestsProfessionalIndex, "professional_id", professionalID)
}

// listActive walks every page of a party index, newest first, then re-reads the
// rows from the base table with ConsistentRead so a row deactivated after the
// index was last updated is dropped.
func (r *ServiceRequestDynamoRepository) listActive(ctx context.Context, index, partyAttr string, partyID int64) ([]entities.ServiceRequest, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#party = :party"),
		FilterExpression:       aws.String("#active = :true"),
		ExpressionAttributeNames: map[string]string{
			"#party":  partyAttr,
			"#active": "active",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":party": numberValue(partyID),
			":true":  &types.AttributeValueMemberBOOL{Value: true},
		},
		ScanIndexForward: aws.Bool(false),
	})

	ids := make([]string, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			id, ok := raw["id"].(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("decode id: index item without string id")
			}
			ids = append(ids, id.Value)
		}
	}

	current, err := r.batchGetConsistent(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]entities.ServiceRequest, 0, len(ids))
	for _, id := range ids {
		sr, ok := current[id]
		if !ok || !sr.Active {
			continue
		}
		items = append(items, sr)
	}
	return items, nil
}

func (r *ServiceRequestDynamoRepository) batchGetConsistent(ctx context.Context, ids []string) (map[string]entities.ServiceRequest, error) {
	out := make(map[string]entities.ServiceRequest, len(ids))
	for start := 0; start < len(ids); start += maxBatchGetKeys {
		end := start + maxBatchGetKeys
		if end > len(ids) {
			end = len(ids)
		}
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, idKey(id))
		}

		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys, ConsistentRead: aws.Bool(true)},
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == maxBatchGetAttempts {
				return nil, fmt.Errorf("batch get service requests: keys still unprocessed after %d attempts", attempt)
			}
			page, err := r.ddb.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, err
			}
			for _, raw := range page.Responses[r.tableName] {
				sr, err := decodeServiceRequestItem(raw)
				if err != nil {
					return nil, err
				}
				out[sr.ID] = sr
			}
			request = page.UnprocessedKeys
		}
	}
	return out, nil
}

// CountPending reads the pair's lock item. It is the duplicate guard's only read
// and must stay off the eventually consistent indexes.
func (r *ServiceRequestDynamoRepository) CountPending(ctx context.Context, clientID, professionalID int64) (int, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(pendingPairLockID(clientID, professionalID)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if len(out.Item) == 0 {
		return 0, nil
	}
	return 1, nil
}

// CountPendingByProfessional counts through the professional index. It feeds the
// dashboard badge, which tolerates index lag.
func (r *ServiceRequestDynamoRepository) CountPendingByProfessional(ctx context.Context, professionalID int64) (int, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(serviceRequestsProfessionalIndex),
		KeyConditionExpression: aws.String("#professional_id = :professional"),
		FilterExpression:       aws.String("#active = :true AND #state = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#professional_id": "professional_id",
			"#active":          "active",
			"#state":           "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":professional": numberValue(professionalID),
			":true":         &types.AttributeValueMemberBOOL{Value: true},
			":pending":      &types.AttributeValueMemberS{Value: string(entities.StatePending)},
		},
		Select: types.SelectCount,
	})

	total := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(page.Count)
	}
	return total, nil
}

type stateUpdateExpr struct {
	update    string
	condition string
	names     map[string]string
	values    map[string]types.AttributeValue
}

func buildStateUpdate(u interfaces.StateUpdate) stateUpdateExpr {
	at := formatTimestamp(u.At)

	updateExpr := "SET #state = :new_state, #updated_at = :at"
	if u.SetRespondedAt {
		updateExpr += ", #responded_at = :at"
	}
	if u.Deactivate {
		updateExpr += ", #active = :false"
	}

	condition := "attribute_exists(#id) AND #active = :true AND #state = :expected_state"
	values := map[string]types.AttributeValue{
		":new_state":      &types.AttributeValueMemberS{Value: string(u.NewState)},
		":expected_state": &types.AttributeValueMemberS{Value: string(u.ExpectedState)},
		":at":             &types.AttributeValueMemberS{Value: at},
		":true":           &types.AttributeValueMemberBOOL{Value: true},
	}
	names := map[string]string{
		"#id":         "id",
		"#state":      "state",
		"#updated_at": "updated_at",
		"#active":     "active",
	}
	if u.SetRespondedAt {
		names["#responded_at"] = "responded_at"
	}
	if u.Deactivate {
		values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	if u.ExpectedClientID != 0 {
		condition += " AND #client_id = :client"
		values[":client"] = numberValue(u.ExpectedClientID)
		names["#client_id"] = "client_id"
	}
	if u.ExpectedProfessionalID != 0 {
		condition += " AND #professional_id = :professional"
		values[":professional"] = numberValue(u.ExpectedProfessionalID)
		names["#professional_id"] = "professional_id"
	}
	return stateUpdateExpr{update: updateExpr, condition: condition, names: names, values: values}
}

func (r *ServiceRequestDynamoRepository) UpdateState(ctx context.Context, u interfaces.StateUpdate) (bool, error) {
	if u.ExpectedState == entities.StatePending && u.NewState != entities.StatePending {
		return r.updateReleasingLock(ctx, u)
	}

	expr := buildStateUpdate(u)
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(u.ID),
		ConditionExpression:       aws.String(expr.condition),
		UpdateExpression:          aws.String(expr.update),
		ExpressionAttributeValues: expr.values,
		ExpressionAttributeNames:  expr.names,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// updateReleasingLock moves a request out of pending and deletes its pair lock in
// one transaction.
func (r *ServiceRequestDynamoRepository) updateReleasingLock(ctx context.Context, u interfaces.StateUpdate) (bool, error) {
	current, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return false, err
	}
	if current.ID == "" || !current.Active || current.State != u.ExpectedState {
		return false, nil
	}

	expr := buildStateUpdate(u)
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(r.tableName),
				Key:                       idKey(u.ID),
				ConditionExpression:       aws.String(expr.condition),
				UpdateExpression:          aws.String(expr.update),
				ExpressionAttributeValues: expr.values,
				ExpressionAttributeNames:  expr.names,
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 idKey(pendingPairLockID(current.ClientID, current.ProfessionalID)),
				ConditionExpression: aws.String("attribute_not_exists(#id) OR #request_id = :request_id"),
				ExpressionAttributeNames: map[string]string{
					"#id":         "id",
					"#request_id": "request_id",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":request_id": &types.AttributeValueMemberS{Value: u.ID},
				},
			}},
		},
	})
	if err != nil {
		reasons := cancellationReasons(err)
		if len(reasons) == 2 && reasons[0] == conditionalCheckFailed {
			return false, nil
		}
		if len(reasons) == 2 && reasons[1] == conditionalCheckFailed {
			return false, fmt.Errorf("pending lock for request %s is held by another request", u.ID)
		}
		return false, err
	}
	return true, nil
}

// cancellationReasons returns the per-item codes of a cancelled transaction, or nil.
func cancellationReasons(err error) []string {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil
	}
	codes := make([]string, 0, len(tce.CancellationReasons))
	for _, reason := range tce.CancellationReasons {
		codes = append(codes, aws.ToString(reason.Code))
	}
	return codes
}

func numberValue(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func toServiceRequestItem(sr entities.ServiceRequest) serviceRequestItem {
	it := serviceRequestItem{
		ID:              sr.ID,
		ClientID:        sr.ClientID,
		ProfessionalID:  sr.ProfessionalID,
		Description:     sr.Description,
		EstimatedBudget: floatToString(sr.EstimatedBudget),
		Modality:        string(sr.Modality),
		Address:         sr.Address,
		District:        sr.District,
		PostalCode:      sr.PostalCode,
		Reference:       sr.Reference,
		ServiceDate:     formatTimestamp(sr.ServiceDate),
		Urgency:         string(sr.Urgency),
		AdditionalNotes: sr.AdditionalNotes,
		PhotoURLs:       sr.PhotoURLs,
		State:           string(sr.State),
		RequestedAt:     formatTimestamp(sr.RequestedAt),
		UpdatedAt:       formatTimestamp(sr.UpdatedAt),
		Active:          sr.Active,
	}
	if sr.RespondedAt != nil {
		it.RespondedAt = formatTimestamp(*sr.RespondedAt)
	}
	return it
}

func decodeServiceRequestItem(raw map[string]types.AttributeValue) (entities.ServiceRequest, error) {
	var it serviceRequestItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.ServiceRequest{}, err
	}
	return fromServiceRequestItem(it)
}

func fromServiceRequestItem(it serviceRequestItem) (entities.ServiceRequest, error) {
	budget, err := strconv.ParseFloat(it.EstimatedBudget, 64)
	if err != nil {
		return entities.ServiceRequest{}, fmt.Errorf("decode estimated_budget: %w", err)
	}
	serviceDate, err := parseTimestamp("service_date", it.ServiceDate)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	requestedAt, err := parseTimestamp("requested_at", it.RequestedAt)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	updatedAt, err := parseTimestamp("updated_at", it.UpdatedAt)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	respondedAt, err := parseOptionalTimestamp("responded_at", it.RespondedAt)
	if err != nil {
		return entities.ServiceRequest{}, err
	}

	sr := entities.ServiceRequest{
		ID:              it.ID,
		ClientID:        it.ClientID,
		ProfessionalID:  it.ProfessionalID,
		Description:     it.Description,
		EstimatedBudget: budget,
		Modality:        entities.ServiceModality(it.Modality),
		Address:         it.Address,
		District:        it.District,
		PostalCode:      it.PostalCode,
		Reference:       it.Reference,
		ServiceDate:     serviceDate,
		Urgency:         entities.Urgency(it.Urgency),
		AdditionalNotes: it.AdditionalNotes,
		PhotoURLs:       it.PhotoURLs,
		State:           entities.RequestState(it.State),
		RequestedAt:     requestedAt,
		RespondedAt:     respondedAt,
		UpdatedAt:       updatedAt,
		Active:          it.Active,
	}
	if err := checkDecoded(&sr); err != nil {
		return entities.ServiceRequest{}, err
	}
	return sr, nil
}
