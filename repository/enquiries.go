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

// EnquiryRepo persists Enquiry records. It also holds the reports collection
// so creation can verify the referenced report exists.
type EnquiryRepo struct {
	col     *mongo.Collection
	reports *mongo.Collection
	blobs   storage.Gateway
}

func NewEnquiryRepo(db *mongo.Database, blobs storage.Gateway) *EnquiryRepo {
	return &EnquiryRepo{
		col:     db.Collection("enquiries"),
		reports: db.Collection("reports"),
		blobs:   blobs,
	}
}

type EnquiryFilter struct {
	ReportID    string
	EnquirerUID string
	Status      string
}

type EnquiryPatch struct {
	Message          *string    `json:"message"`
	Status           *string    `json:"status"`
	Response         *string    `json:"response"`
	LastSeenLocation *string    `json:"lastSeenLocation"`
	LastSeenDate     *time.Time `json:"lastSeenDate"`
	SightingDetails  *string    `json:"sightingDetails"`
	Longitude        *float64   `json:"longitude"`
	Latitude         *float64   `json:"latitude"`
}

// Create validates and inserts a new enquiry. The referenced report must
// exist; otherwise the enquiry is rejected and nothing is persisted.
func (r *EnquiryRepo) Create(ctx context.Context, reportID string, enq *models.Enquiry) (*models.Enquiry, error) {
	var missing []string
	if strings.TrimSpace(reportID) == "" {
		missing = append(missing, "reportId")
	}
	if strings.TrimSpace(enq.EnquirerUID) == "" {
		missing = append(missing, "enquirerUid")
	}
	if strings.TrimSpace(enq.EnquirerName) == "" {
		missing = append(missing, "enquirerName")
	}
	if strings.TrimSpace(enq.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	oid, err := parseID(reportID)
	if err != nil {
		return nil, err
	}
	if err := r.reports.FindOne(ctx, bson.M{"_id": oid}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	enq.ReportID = oid

	if len(enq.Location.Coordinates) != 2 {
		enq.Location = models.NewGeoPoint(0, 0)
	} else {
		enq.Location.Type = "Point"
	}
	enq.Status = models.EnquiryStatusPending
	now := time.Now().UTC()
	enq.CreatedAt = now
	enq.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, enq)
	if err != nil {
		return nil, err
	}
	enq.ID = res.InsertedID.(primitive.ObjectID)
	return enq, nil
}

func (r *EnquiryRepo) GetByID(ctx context.Context, id string) (*models.Enquiry, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var enq models.Enquiry
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&enq); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &enq, nil
}

func (r *EnquiryRepo) List(ctx context.Context, filter EnquiryFilter, page, limit int) ([]models.Enquiry, int64, int, error) {
	page, limit = clampPage(page, limit)

	q := bson.M{}
	if filter.ReportID != "" {
		oid, err := parseID(filter.ReportID)
		if err != nil {
			return nil, 0, 0, err
		}
		q["reportId"] = oid
	}
	if filter.EnquirerUID != "" {
		q["enquirerUid"] = filter.EnquirerUID
	}
	if filter.Status != "" {
		if !models.ValidEnquiryStatus(filter.Status) {
			return nil, 0, 0, invalid("invalid status %q", filter.Status)
		}
		q["status"] = filter.Status
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, 0, err
	}
	defer cur.Close(ctx)

	items := make([]models.Enquiry, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, 0, err
	}
	return items, total, totalPages(total, limit), nil
}

func (r *EnquiryRepo) Update(ctx context.Context, id string, patch EnquiryPatch) (*models.Enquiry, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Message != nil {
		set["message"] = *patch.Message
	}
	if patch.Status != nil {
		if !models.ValidEnquiryStatus(*patch.Status) {
			return nil, invalid("invalid status %q", *patch.Status)
		}
		set["status"] = *patch.Status
	}
	if patch.Response != nil {
		set["response"] = *patch.Response
	}
	if patch.LastSeenLocation != nil {
		set["lastSeenLocation"] = *patch.LastSeenLocation
	}
	if patch.LastSeenDate != nil {
		set["lastSeenDate"] = *patch.LastSeenDate
	}
	if patch.SightingDetails != nil {
		set["sightingDetails"] = *patch.SightingDetails
	}
	switch {
	case patch.Longitude != nil && patch.Latitude != nil:
		set["location"] = models.NewGeoPoint(*patch.Longitude, *patch.Latitude)
	case patch.Longitude != nil || patch.Latitude != nil:
		return nil, invalid("longitude and latitude must be provided together")
	}

	var enq models.Enquiry
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&enq)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &enq, nil
}

// Respond records the reply to an enquiry and moves its status, defaulting to
// "responded".
func (r *EnquiryRepo) Respond(ctx context.Context, id, response, status string) (*models.Enquiry, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &ValidationError{Missing: []string{"response"}}
	}
	if status == "" {
		status = models.EnquiryStatusResponded
	}
	return r.Update(ctx, id, EnquiryPatch{Response: &response, Status: &status})
}

// Delete removes an enquiry, releasing all its photo blobs first.
// Releases are best-effort: failures are logged, never propagated.
func (r *EnquiryRepo) Delete(ctx context.Context, id string) error {
	enq, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for i := range enq.Images {
		ref := &enq.Images[i]
		if err := r.blobs.Delete(ctx, ref); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("enquiry image cleanup failed, deleting record anyway",
				"enquiry", enq.ID.Hex(), "backend", ref.Backend, "error", err)
		}
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": enq.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
