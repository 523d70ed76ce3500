package mongorepos

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/schedule"
)

type (
	sessionDocument struct {
		DayOfWeek int    `bson:"day_of_week"`
		StartTime string `bson:"start_time"`
		EndTime   string `bson:"end_time"`
	}

	classDocument struct {
		ID        string            `bson:"_id"`
		Name      string            `bson:"name"`
		Grade     int               `bson:"grade"`
		Sessions  []sessionDocument `bson:"sessions"`
		CreatedAt time.Time         `bson:"created_at"`
		UpdatedAt time.Time         `bson:"updated_at"`
	}
)

func newClassDocument(c schedule.ClassSchedule) classDocument {
	doc := classDocument{
		ID:        c.ID,
		Name:      c.Name,
		Grade:     c.Grade,
		Sessions:  make([]sessionDocument, 0, len(c.Sessions)),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	for _, s := range c.Sessions {
		doc.Sessions = append(doc.Sessions, sessionDocument{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return doc
}

func (doc classDocument) class() schedule.ClassSchedule {
	c := schedule.ClassSchedule{
		ID:        doc.ID,
		Name:      doc.Name,
		Grade:     doc.Grade,
		Sessions:  make([]schedule.Session, 0, len(doc.Sessions)),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
	for _, s := range doc.Sessions {
		c.Sessions = append(c.Sessions, schedule.Session{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return c
}

type classRepository struct {
	coll *mongo.Collection
}

var _ schedule.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *mongo.Database) schedule.Repository {
	return &classRepository{coll: db.Collection(classesCollection)}
}

// trapNoDocsErr maps mongo "no documents" err to schedule.ErrNotFound
func (repo classRepository) trapNoDocsErr(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return schedule.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	class.ID = uuid.NewString()
	doc := newClassDocument(class)
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return schedule.ClassSchedule{}, wrapErr(err, "inserting class")
	}
	return doc.class(), nil
}

func classFilter(filter *schedule.QueryFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.Search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	if filter.Grade != 0 {
		query["grade"] = filter.Grade
	}
	if filter.DayOfWeek != nil {
		query["sessions.day_of_week"] = *filter.DayOfWeek
	}
	return query
}

func classSort(ordering []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(ordering)+2)
	seen := make(map[string]bool, len(ordering)+2)
	add := func(key string, dir int) {
		if !seen[key] {
			seen[key] = true
			sort = append(sort, bson.E{Key: key, Value: dir})
		}
	}
	for _, o := range ordering {
		switch o.Field {
		case "name", "grade", "created_at", "updated_at":
			dir := -1
			if o.Ascending {
				dir = 1
			}
			add(o.Field, dir)
		}
	}
	add("name", 1)
	add("_id", 1)
	return sort
}

func (repo classRepository) QueryClasses(
	ctx context.Context,
	filter *schedule.QueryFilter,
	ordering []core.DBOrdering,
) ([]schedule.ClassSchedule, error) {
	cur, err := repo.coll.Find(ctx, classFilter(filter), options.Find().SetSort(classSort(ordering)))
	if err != nil {
		return nil, wrapErr(err, "finding classes")
	}
	var docs []classDocument
	if err = cur.All(ctx, &docs); err != nil {
		return nil, wrapErr(err, "decoding classes")
	}

	classes := make([]schedule.ClassSchedule, 0, len(docs))
	for _, doc := range docs {
		classes = append(classes, doc.class())
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (schedule.ClassSchedule, error) {
	var doc classDocument
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return schedule.ClassSchedule{}, repo.trapNoDocsErr(err, "finding class")
	}
	return doc.class(), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, class schedule.ClassSchedule) (schedule.ClassSchedule, error) {
	doc := newClassDocument(class)
	update := bson.M{"$set": bson.M{
		"name":       doc.Name,
		"grade":      doc.Grade,
		"sessions":   doc.Sessions,
		"updated_at": doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated classDocument
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&updated); err != nil {
		return schedule.ClassSchedule{}, repo.trapNoDocsErr(err, "updating class")
	}
	return updated.class(), nil
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, wrapErr(err, "deleting classes")
	}
	return int(res.DeletedCount), nil
}
