package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

// These tests run against a real MongoDB (local or CI service container).
// They are skipped unless MONGO_TEST_URI is set, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./repository/...

// stubGateway records blob deletions so cascade behavior can be asserted
// without a storage backend.
type stubGateway struct {
	deleted []string
	failAll bool
}

func (s *stubGateway) Upload(context.Context, []byte, string, string) (*models.PhotoReference, error) {
	panic("not used")
}

func (s *stubGateway) Fetch(context.Context, *models.PhotoReference) ([]byte, string, error) {
	panic("not used")
}

func (s *stubGateway) Delete(_ context.Context, ref *models.PhotoReference) error {
	if s.failAll {
		return fmt.Errorf("backend unreachable")
	}
	s.deleted = append(s.deleted, ref.FileID)
	return nil
}

func (s *stubGateway) HealthCheck(context.Context) error { return nil }
func (s *stubGateway) Kind() string                      { return "stub" }

func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("lostfound_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	_, err = db.Collection("reports").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	require.NoError(t, err)
	return db
}

func validReport(name string) *models.Report {
	return &models.Report{
		ReporterUID:      "uid-1",
		ChildName:        name,
		ChildAge:         7,
		LastSeenLocation: "Central Park",
		Description:      "blue jacket",
	}
}

func TestReportCreateGetRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})
	ctx := context.Background()

	created, err := repo.Create(ctx, validReport("Asha"))
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.ChildName)
	assert.Equal(t, 7, got.ChildAge)
	assert.Equal(t, "Central Park", got.LastSeenLocation)
	assert.Equal(t, "blue jacket", got.Description)

	// Server-side defaults.
	assert.Equal(t, models.ReportStatusActive, got.Status)
	assert.Equal(t, models.GenderOther, got.ChildGender)
	assert.Equal(t, []float64{0, 0}, got.Location.Coordinates)
	assert.Nil(t, got.Photo)
}

func TestReportCreateValidation(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})

	_, err := repo.Create(context.Background(), &models.Report{ReporterUID: "uid-1"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "childName")
	assert.Contains(t, err.Error(), "lastSeenLocation")
	assert.Contains(t, err.Error(), "description")

	bad := validReport("Asha")
	bad.ChildAge = 30
	_, err = repo.Create(context.Background(), bad)
	assert.True(t, IsValidation(err))
}

func TestReportDeleteReleasesPhoto(t *testing.T) {
	db := testDB(t)
	gw := &stubGateway{}
	repo := NewReportRepo(db, gw)
	ctx := context.Background()

	rep := validReport("Asha")
	rep.Photo = &models.PhotoReference{Backend: models.BackendEmbedded, FileID: "65f000000000000000000009"}
	created, err := repo.Create(ctx, rep)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID.Hex()))
	assert.Equal(t, []string{"65f000000000000000000009"}, gw.deleted)

	_, err = repo.GetByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportDeleteSurvivesCleanupFailure(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{failAll: true})
	ctx := context.Background()

	rep := validReport("Asha")
	rep.Photo = &models.PhotoReference{Backend: models.BackendEmbedded, FileID: "65f000000000000000000009"}
	created, err := repo.Create(ctx, rep)
	require.NoError(t, err)

	// Cleanup failure is logged, never propagated: the record still goes.
	require.NoError(t, repo.Delete(ctx, created.ID.Hex()))
	_, err = repo.GetByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportListPagination(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := repo.Create(ctx, validReport(fmt.Sprintf("child-%d", i)))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond) // distinct createdAt for a stable sort
	}

	seen := map[string]bool{}
	var prev time.Time
	for page := 1; page <= 3; page++ {
		items, total, pages, err := repo.List(ctx, ReportFilter{}, page, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		assert.Equal(t, 3, pages)
		for _, it := range items {
			assert.False(t, seen[it.ID.Hex()], "record repeated across pages")
			seen[it.ID.Hex()] = true
			if !prev.IsZero() {
				assert.False(t, it.CreatedAt.After(prev), "expected newest-first order")
			}
			prev = it.CreatedAt
		}
	}
	assert.Len(t, seen, 7, "pages must cover all records exactly once")
}

func TestReportStatusFilter(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})
	ctx := context.Background()

	a, err := repo.Create(ctx, validReport("A"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, validReport("B"))
	require.NoError(t, err)

	status := models.ReportStatusFound
	_, err = repo.Update(ctx, a.ID.Hex(), ReportPatch{Status: &status})
	require.NoError(t, err)

	items, total, _, err := repo.List(ctx, ReportFilter{Status: models.ReportStatusFound}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ChildName)

	_, _, _, err = repo.List(ctx, ReportFilter{Status: "vanished"}, 1, 10)
	assert.True(t, IsValidation(err))
}

func TestReportUpdateRefreshesTimestampAndLocation(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})
	ctx := context.Background()

	created, err := repo.Create(ctx, validReport("Asha"))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	lng, lat := -73.9654, 40.7829
	updated, err := repo.Update(ctx, created.ID.Hex(), ReportPatch{Longitude: &lng, Latitude: &lat})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, []float64{lng, lat}, updated.Location.Coordinates)
}

func TestSearchByLocationRadius(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepo(db, &stubGateway{})
	ctx := context.Background()

	place := func(name string, lng, lat float64) {
		rep := validReport(name)
		rep.Location = models.NewGeoPoint(lng, lat)
		_, err := repo.Create(ctx, rep)
		require.NoError(t, err)
	}

	// Around Central Park (~ -73.965, 40.783). One degree of latitude is
	// ~111 km, so 0.05° ≈ 5.5 km and 1° is far outside a 10 km radius.
	place("near", -73.9650, 40.7830)
	place("close", -73.9650, 40.8330) // ~5.5 km north
	place("far", -73.9650, 41.7830)   // ~111 km north

	items, total, _, err := repo.SearchByLocation(ctx, -73.9650, 40.7830, 10, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	// $nearSphere orders by distance ascending.
	assert.Equal(t, "near", items[0].ChildName)
	assert.Equal(t, "close", items[1].ChildName)
}

func TestEnquiryLifecycle(t *testing.T) {
	db := testDB(t)
	gw := &stubGateway{}
	reports := NewReportRepo(db, gw)
	enquiries := NewEnquiryRepo(db, gw)
	ctx := context.Background()

	rep, err := reports.Create(ctx, validReport("Asha"))
	require.NoError(t, err)

	t.Run("rejects unknown report", func(t *testing.T) {
		_, err := enquiries.Create(ctx, "65f0000000000000000000ff", &models.Enquiry{
			EnquirerUID:  "uid-2",
			EnquirerName: "Sam",
			Message:      "possible sighting",
		})
		assert.ErrorIs(t, err, ErrNotFound)

		_, total, _, lerr := enquiries.List(ctx, EnquiryFilter{}, 1, 10)
		require.NoError(t, lerr)
		assert.Zero(t, total, "rejected enquiry must not be persisted")
	})

	t.Run("create, respond, delete", func(t *testing.T) {
		enq, err := enquiries.Create(ctx, rep.ID.Hex(), &models.Enquiry{
			EnquirerUID:  "uid-2",
			EnquirerName: "Sam",
			Message:      "possible sighting",
			Images: []models.PhotoReference{
				{Backend: models.BackendEmbedded, FileID: "65f000000000000000000011"},
				{Backend: models.BackendEmbedded, FileID: "65f000000000000000000012"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.EnquiryStatusPending, enq.Status)

		responded, err := enquiries.Respond(ctx, enq.ID.Hex(), "thank you, team dispatched", "")
		require.NoError(t, err)
		assert.Equal(t, models.EnquiryStatusResponded, responded.Status)
		assert.Equal(t, "thank you, team dispatched", responded.Response)

		require.NoError(t, enquiries.Delete(ctx, enq.ID.Hex()))
		assert.ElementsMatch(t, []string{"65f000000000000000000011", "65f000000000000000000012"}, gw.deleted)
	})
}
