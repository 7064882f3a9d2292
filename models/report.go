package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses. Transitions are deliberately unrestricted: operators may
// set any status at any time, only enum membership is checked.
const (
	ReportStatusActive        = "active"
	ReportStatusInvestigating = "investigating"
	ReportStatusFound         = "found"
	ReportStatusClosed        = "closed"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// GeoPoint is a GeoJSON point. Coordinates are always a [longitude, latitude]
// pair, defaulting to [0,0] when the reporter gave no position.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Report is a missing-child case.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReporterUID string             `bson:"reporterUid" json:"reporterUid"`

	ChildName        string    `bson:"childName" json:"childName"`
	ChildAge         int       `bson:"childAge" json:"childAge"`
	ChildGender      string    `bson:"childGender" json:"childGender"`
	LastSeenDate     time.Time `bson:"lastSeenDate" json:"lastSeenDate"`
	LastSeenLocation string    `bson:"lastSeenLocation" json:"lastSeenLocation"`
	Description      string    `bson:"description" json:"description"`

	ContactName  string `bson:"contactName" json:"contactName"`
	ContactPhone string `bson:"contactPhone" json:"contactPhone"`
	ContactEmail string `bson:"contactEmail" json:"contactEmail"`

	Status string          `bson:"status" json:"status"`
	Photo  *PhotoReference `bson:"photo,omitempty" json:"photo,omitempty"`

	// Legacy photo fields written by earlier versions of the app. New records
	// always use Photo; these survive only so old documents keep resolving.
	PhotoURL     string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PhotoID      string `bson:"photoId,omitempty" json:"photoId,omitempty"`
	ImageURL     string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ChildImageID string `bson:"childImageId,omitempty" json:"childImageId,omitempty"`

	AdditionalDetails   string `bson:"additionalDetails,omitempty" json:"additionalDetails,omitempty"`
	IdentifyingFeatures string `bson:"identifyingFeatures,omitempty" json:"identifyingFeatures,omitempty"`

	Location GeoPoint `bson:"location" json:"location"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusActive, ReportStatusInvestigating, ReportStatusFound, ReportStatusClosed:
		return true
	}
	return false
}

func ValidGender(s string) bool {
	switch s {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
