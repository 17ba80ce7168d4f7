package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hotelbook/room-reservation/internal/model"
)

// reservationDoc is the document shape in the reservation collection.  The
// _id assigned by Mongo is never read back.
type reservationDoc struct {
	Name      string `bson:"name"`
	StartDate string `bson:"start_date"`
	EndDate   string `bson:"end_date"`
	RoomID    int    `bson:"room_id"`
}

func toDoc(r model.Reservation) reservationDoc {
	return reservationDoc{
		Name:      r.Name,
		StartDate: r.StartDate.String(),
		EndDate:   r.EndDate.String(),
		RoomID:    r.RoomID,
	}
}

// MongoReservationRepo stores reservations as documents in one collection.
type MongoReservationRepo struct {
	coll *mongo.Collection
}

func NewMongoReservationRepo(coll *mongo.Collection) *MongoReservationRepo {
	return &MongoReservationRepo{coll: coll}
}

// EnsureReservationIndexes creates the lookup indexes used by FindByRoom
// and FindByName.  It is idempotent.
func EnsureReservationIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	return err
}

// tupleFilter matches a reservation on all four of its fields.
func tupleFilter(r model.Reservation) bson.D {
	return bson.D{
		{Key: "name", Value: r.Name},
		{Key: "start_date", Value: r.StartDate.String()},
		{Key: "end_date", Value: r.EndDate.String()},
		{Key: "room_id", Value: r.RoomID},
	}
}

func rescheduleUpdate(newStart, newEnd model.Date) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "start_date", Value: newStart.String()},
		{Key: "end_date", Value: newEnd.String()},
	}}}
}

func (r *MongoReservationRepo) FindByName(ctx context.Context, name string) ([]model.Reservation, error) {
	return r.find(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *MongoReservationRepo) FindByRoom(ctx context.Context, roomID int) ([]model.Reservation, error) {
	return r.find(ctx, bson.D{{Key: "room_id", Value: roomID}})
}

func (r *MongoReservationRepo) find(ctx context.Context, filter bson.D) ([]model.Reservation, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 0}}).
		SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []reservationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0, len(docs))
	for _, d := range docs {
		res, err := fromStrings(d.Name, d.StartDate, d.EndDate, d.RoomID)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *MongoReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
	_, err := r.coll.InsertOne(ctx, toDoc(res))
	return err
}

func (r *MongoReservationRepo) Update(ctx context.Context, match model.Reservation, newStart, newEnd model.Date) (int64, error) {
	out, err := r.coll.UpdateOne(ctx, tupleFilter(match), rescheduleUpdate(newStart, newEnd))
	if err != nil {
		return 0, err
	}
	return out.MatchedCount, nil
}

func (r *MongoReservationRepo) Delete(ctx context.Context, match model.Reservation) (int64, error) {
	out, err := r.coll.DeleteOne(ctx, tupleFilter(match))
	if err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}
