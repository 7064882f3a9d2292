package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

func strPtr(s string) *string   { return &s }
func intPtr(n int) *int         { return &n }
func f64Ptr(f float64) *float64 { return &f }

func TestBuildReportPatch(t *testing.T) {
	t.Run("updatedAt is always refreshed", func(t *testing.T) {
		set, err := buildReportPatch(ReportPatch{})
		require.NoError(t, err)
		assert.Contains(t, set, "updatedAt")
		assert.Len(t, set, 1)
	})

	t.Run("coordinates replace the whole point", func(t *testing.T) {
		set, err := buildReportPatch(ReportPatch{Longitude: f64Ptr(-73.97), Latitude: f64Ptr(40.78)})
		require.NoError(t, err)
		point, ok := set["location"].(models.GeoPoint)
		require.True(t, ok)
		assert.Equal(t, "Point", point.Type)
		assert.Equal(t, []float64{-73.97, 40.78}, point.Coordinates)
	})

	t.Run("longitude without latitude is rejected", func(t *testing.T) {
		_, err := buildReportPatch(ReportPatch{Longitude: f64Ptr(-73.97)})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("latitude without longitude is rejected", func(t *testing.T) {
		_, err := buildReportPatch(ReportPatch{Latitude: f64Ptr(40.78)})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("age outside range is rejected", func(t *testing.T) {
		_, err := buildReportPatch(ReportPatch{ChildAge: intPtr(19)})
		assert.True(t, IsValidation(err))
		_, err = buildReportPatch(ReportPatch{ChildAge: intPtr(-1)})
		assert.True(t, IsValidation(err))
	})

	t.Run("any enum status is accepted regardless of current state", func(t *testing.T) {
		for _, status := range []string{"active", "investigating", "found", "closed"} {
			set, err := buildReportPatch(ReportPatch{Status: strPtr(status)})
			require.NoError(t, err)
			assert.Equal(t, status, set["status"])
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := buildReportPatch(ReportPatch{Status: strPtr("vanished")})
		assert.True(t, IsValidation(err))
	})

	t.Run("nil fields stay untouched", func(t *testing.T) {
		set, err := buildReportPatch(ReportPatch{Description: strPtr("seen near the station")})
		require.NoError(t, err)
		assert.Equal(t, "seen near the station", set["description"])
		assert.NotContains(t, set, "childName")
		assert.NotContains(t, set, "status")
	})
}
