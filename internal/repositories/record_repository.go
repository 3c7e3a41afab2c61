package repositories

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/geoform/intake-service/internal/models"
)

// Server error codes the gateway discriminates on.
const (
	codeNamespaceNotFound         = 26
	codeDocumentValidationFailure = 121
)

// RecordRepository is the storage gateway the endpoints depend on.
type RecordRepository interface {
	Insert(ctx context.Context, r *models.Record) (primitive.ObjectID, error)
	FindAllOrderedByTime(ctx context.Context) ([]*models.Record, error)
}

// MongoRecordRepository stores records in a single MongoDB collection.
type MongoRecordRepository struct {
	coll *mongo.Collection
}

// NewRecordRepository wraps coll. Nested documents inside free-form fields
// such as exactLocationData.components decode as maps so they serialize back
// to JSON objects.
func NewRecordRepository(coll *mongo.Collection) *MongoRecordRepository {
	if coll == nil {
		return &MongoRecordRepository{}
	}
	registry := bson.NewRegistry()
	registry.RegisterTypeMapEntry(bson.TypeEmbeddedDocument, reflect.TypeOf(bson.M{}))
	if cloned, err := coll.Clone(options.Collection().SetRegistry(registry)); err == nil {
		coll = cloned
	}
	return &MongoRecordRepository{coll: coll}
}

// Insert validates the identity fields and writes r. On success r.ID holds
// the generated identifier; SubmittedAt is set to now when zero.
func (repo *MongoRecordRepository) Insert(ctx context.Context, r *models.Record) (primitive.ObjectID, error) {
	if missing := r.MissingIdentityFields(); len(missing) > 0 {
		fields := make(map[string]string, len(missing))
		for _, f := range missing {
			fields[f] = fmt.Sprintf("%s is required", f)
		}
		return primitive.NilObjectID, &ValidationError{Fields: fields}
	}
	if repo.coll == nil {
		return primitive.NilObjectID, newStorageError("insert", ErrNotConnected)
	}

	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.SubmittedAt.IsZero() {
		// BSON dates carry millisecond precision.
		r.SubmittedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if _, err := repo.coll.InsertOne(ctx, r); err != nil {
		r.ID = primitive.NilObjectID
		return primitive.NilObjectID, classifyWriteError("insert", err)
	}
	return r.ID, nil
}

// FindAllOrderedByTime returns every record, most recently submitted first.
func (repo *MongoRecordRepository) FindAllOrderedByTime(ctx context.Context) ([]*models.Record, error) {
	if repo.coll == nil {
		return nil, newStorageError("find", ErrNotConnected)
	}

	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cur, err := repo.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, newStorageError("find", err)
	}

	records := make([]*models.Record, 0)
	if err := cur.All(ctx, &records); err != nil {
		return nil, newStorageError("find", err)
	}
	if records == nil {
		records = make([]*models.Record, 0)
	}
	return records, nil
}

// EnsureIndexes creates the listing index and, when uniqueEmail is set, a
// unique index on email that turns duplicate submissions into conflicts.
func (repo *MongoRecordRepository) EnsureIndexes(ctx context.Context, uniqueEmail bool) error {
	if repo.coll == nil {
		return ErrNotConnected
	}
	indexes := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "submittedAt", Value: -1}},
		Options: options.Index().SetName("submittedAt_desc"),
	}}
	if uniqueEmail {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		})
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("creating indexes on %s: %w", repo.coll.Name(), err)
	}
	return nil
}

// EnsureSchema installs a server-side $jsonSchema validator on the
// collection, creating the collection if it does not exist yet.
func (repo *MongoRecordRepository) EnsureSchema(ctx context.Context) error {
	if repo.coll == nil {
		return ErrNotConnected
	}
	validator := bson.M{"$jsonSchema": recordJSONSchema()}
	db := repo.coll.Database()

	err := db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: repo.coll.Name()},
		{Key: "validator", Value: validator},
	}).Err()
	if err == nil {
		return nil
	}

	var se mongo.ServerError
	if !errors.As(err, &se) || !se.HasErrorCode(codeNamespaceNotFound) {
		return fmt.Errorf("applying validator to %s: %w", repo.coll.Name(), err)
	}
	opts := options.CreateCollection().SetValidator(validator)
	if err := db.CreateCollection(ctx, repo.coll.Name(), opts); err != nil {
		return fmt.Errorf("creating %s with validator: %w", repo.coll.Name(), err)
	}
	return nil
}

func (repo *MongoRecordRepository) Ping(ctx context.Context) error {
	if repo.coll == nil {
		return ErrNotConnected
	}
	return repo.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (repo *MongoRecordRepository) DatabaseName() string {
	if repo.coll == nil {
		return ""
	}
	return repo.coll.Database().Name()
}

func (repo *MongoRecordRepository) CollectionName() string {
	if repo.coll == nil {
		return ""
	}
	return repo.coll.Name()
}

func classifyWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &ConflictError{Err: err}
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeDocumentValidationFailure {
				return &ValidationError{Fields: map[string]string{"document": e.Message}}
			}
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeDocumentValidationFailure) {
		return &ValidationError{Fields: map[string]string{"document": "Document failed validation"}}
	}
	return newStorageError(op, err)
}

func recordJSONSchema() bson.M {
	nonEmpty := bson.M{"bsonType": "string", "minLength": 1}
	number := bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}}
	return bson.M{
		"bsonType": "object",
		"required": bson.A{models.FieldFirstName, models.FieldLastName, models.FieldEmail},
		"properties": bson.M{
			models.FieldFirstName: nonEmpty,
			models.FieldLastName:  nonEmpty,
			models.FieldEmail:     nonEmpty,
			"phone":               bson.M{"bsonType": "string"},
			"age":                 number,
			"gender":              bson.M{"bsonType": "string"},
			"location": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"latitude":  number,
					"longitude": number,
					"accuracy":  number,
					"timestamp": bson.M{"bsonType": "date"},
				},
			},
			"exactLocationData": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"fullAddress": bson.M{"bsonType": "string"},
					"placeId":     bson.M{"bsonType": "string"},
					"components":  bson.M{"bsonType": "array"},
					"types":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
			},
			"locationCaptured": bson.M{"bsonType": "bool"},
			"submittedAt":      bson.M{"bsonType": "date"},
		},
	}
}
