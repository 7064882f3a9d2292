package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

// ReportRepo persists Report records. It holds the blob gateway so deleting a
// record can release its photo.
type ReportRepo struct {
	col   *mongo.Collection
	blobs storage.Gateway
}

func NewReportRepo(db *mongo.Database, blobs storage.Gateway) *ReportRepo {
	return &ReportRepo{col: db.Collection("reports"), blobs: blobs}
}

// ReportFilter narrows List results. Zero values mean "no constraint".
type ReportFilter struct {
	Status      string
	ReporterUID string
}

// ReportPatch carries a partial update. Nil fields are left untouched.
// Longitude and Latitude must be given together; they replace the whole
// location point atomically.
type ReportPatch struct {
	ChildName           *string                `json:"childName"`
	ChildAge            *int                   `json:"childAge"`
	ChildGender         *string                `json:"childGender"`
	LastSeenDate        *time.Time             `json:"lastSeenDate"`
	LastSeenLocation    *string                `json:"lastSeenLocation"`
	Description         *string                `json:"description"`
	ContactName         *string                `json:"contactName"`
	ContactPhone        *string                `json:"contactPhone"`
	ContactEmail        *string                `json:"contactEmail"`
	Status              *string                `json:"status"`
	AdditionalDetails   *string                `json:"additionalDetails"`
	IdentifyingFeatures *string                `json:"identifyingFeatures"`
	Photo               *models.PhotoReference `json:"photo"`
	Longitude           *float64               `json:"longitude"`
	Latitude            *float64               `json:"latitude"`
}

// Create validates and inserts a new report, assigning id, defaults and
// timestamps server-side.
func (r *ReportRepo) Create(ctx context.Context, rep *models.Report) (*models.Report, error) {
	var missing []string
	if strings.TrimSpace(rep.ReporterUID) == "" {
		missing = append(missing, "reporterUid")
	}
	if strings.TrimSpace(rep.ChildName) == "" {
		missing = append(missing, "childName")
	}
	if strings.TrimSpace(rep.LastSeenLocation) == "" {
		missing = append(missing, "lastSeenLocation")
	}
	if strings.TrimSpace(rep.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	if rep.ChildAge < 0 || rep.ChildAge > 18 {
		return nil, invalid("childAge must be between 0 and 18, got %d", rep.ChildAge)
	}
	if rep.ChildGender == "" {
		rep.ChildGender = models.GenderOther
	} else if !models.ValidGender(rep.ChildGender) {
		return nil, invalid("invalid childGender %q", rep.ChildGender)
	}

	if rep.ContactName == "" {
		rep.ContactName = "Anonymous"
	}
	if rep.ContactPhone == "" {
		rep.ContactPhone = "Not provided"
	}
	if rep.ContactEmail == "" {
		rep.ContactEmail = "Not provided"
	}
	if rep.LastSeenDate.IsZero() {
		rep.LastSeenDate = time.Now().UTC()
	}
	if len(rep.Location.Coordinates) != 2 {
		rep.Location = models.NewGeoPoint(0, 0)
	} else {
		rep.Location.Type = "Point"
	}

	rep.Status = models.ReportStatusActive
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, rep)
	if err != nil {
		return nil, err
	}
	rep.ID = res.InsertedID.(primitive.ObjectID)
	return rep, nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var rep models.Report
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rep); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// List returns one page of reports, newest first.
func (r *ReportRepo) List(ctx context.Context, filter ReportFilter, page, limit int) ([]models.Report, int64, int, error) {
	page, limit = clampPage(page, limit)

	q := bson.M{}
	if filter.Status != "" {
		if !models.ValidReportStatus(filter.Status) {
			return nil, 0, 0, invalid("invalid status %q", filter.Status)
		}
		q["status"] = filter.Status
	}
	if filter.ReporterUID != "" {
		q["reporterUid"] = filter.ReporterUID
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	items, err := r.decodeAll(ctx, q, opts)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, totalPages(total, limit), nil
}

// SearchByLocation returns reports within radiusKm of (lng, lat), nearest
// first. $nearSphere computes spherical distance and requires the 2dsphere
// index; the count uses $centerSphere because $nearSphere is not allowed in
// count queries.
func (r *ReportRepo) SearchByLocation(ctx context.Context, lng, lat, radiusKm float64, page, limit int) ([]models.Report, int64, int, error) {
	page, limit = clampPage(page, limit)
	if radiusKm <= 0 {
		radiusKm = 10
	}

	q := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusKm * 1000, // meters
			},
		},
	}
	countQ := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": []any{[]float64{lng, lat}, radiusKm / earthRadiusKm},
			},
		},
	}

	total, err := r.col.CountDocuments(ctx, countQ)
	if err != nil {
		return nil, 0, 0, err
	}

	// No explicit sort: $nearSphere already orders by distance ascending.
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	items, err := r.decodeAll(ctx, q, opts)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, totalPages(total, limit), nil
}

// Update applies a partial update and returns the new document.
func (r *ReportRepo) Update(ctx context.Context, id string, patch ReportPatch) (*models.Report, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set, err := buildReportPatch(patch)
	if err != nil {
		return nil, err
	}

	var rep models.Report
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rep)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// Delete removes a report. The owned photo blob is released first,
// best-effort: a failed release is logged and the record is deleted anyway.
func (r *ReportRepo) Delete(ctx context.Context, id string) error {
	rep, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if rep.Photo != nil {
		if err := r.blobs.Delete(ctx, rep.Photo); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("report photo cleanup failed, deleting record anyway",
				"report", rep.ID.Hex(), "backend", rep.Photo.Backend, "error", err)
		}
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": rep.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepo) decodeAll(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Report, error) {
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]models.Report, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func buildReportPatch(patch ReportPatch) (bson.M, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if patch.ChildName != nil {
		set["childName"] = *patch.ChildName
	}
	if patch.ChildAge != nil {
		if *patch.ChildAge < 0 || *patch.ChildAge > 18 {
			return nil, invalid("childAge must be between 0 and 18, got %d", *patch.ChildAge)
		}
		set["childAge"] = *patch.ChildAge
	}
	if patch.ChildGender != nil {
		if !models.ValidGender(*patch.ChildGender) {
			return nil, invalid("invalid childGender %q", *patch.ChildGender)
		}
		set["childGender"] = *patch.ChildGender
	}
	if patch.Status != nil {
		// Any enum value is accepted at any time; transitions are not
		// restricted so operators can override freely.
		if !models.ValidReportStatus(*patch.Status) {
			return nil, invalid("invalid status %q", *patch.Status)
		}
		set["status"] = *patch.Status
	}
	if patch.LastSeenDate != nil {
		set["lastSeenDate"] = *patch.LastSeenDate
	}
	if patch.LastSeenLocation != nil {
		set["lastSeenLocation"] = *patch.LastSeenLocation
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ContactName != nil {
		set["contactName"] = *patch.ContactName
	}
	if patch.ContactPhone != nil {
		set["contactPhone"] = *patch.ContactPhone
	}
	if patch.ContactEmail != nil {
		set["contactEmail"] = *patch.ContactEmail
	}
	if patch.AdditionalDetails != nil {
		set["additionalDetails"] = *patch.AdditionalDetails
	}
	if patch.IdentifyingFeatures != nil {
		set["identifyingFeatures"] = *patch.IdentifyingFeatures
	}
	if patch.Photo != nil {
		set["photo"] = patch.Photo
	}

	// Coordinates replace the whole point, never one axis alone.
	switch {
	case patch.Longitude != nil && patch.Latitude != nil:
		set["location"] = models.NewGeoPoint(*patch.Longitude, *patch.Latitude)
	case patch.Longitude != nil || patch.Latitude != nil:
		return nil, invalid("longitude and latitude must be provided together")
	}

	return set, nil
}
