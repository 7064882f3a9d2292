package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EnquiryStatusPending   = "pending"
	EnquiryStatusReviewed  = "reviewed"
	EnquiryStatusResponded = "responded"
	EnquiryStatusClosed    = "closed"
)

// Enquiry is a message from a searcher about a Report, optionally carrying
// sighting details and supporting photos.
type Enquiry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID primitive.ObjectID `bson:"reportId" json:"reportId"`

	EnquirerUID   string `bson:"enquirerUid" json:"enquirerUid"`
	EnquirerName  string `bson:"enquirerName" json:"enquirerName"`
	EnquirerPhone string `bson:"enquirerPhone,omitempty" json:"enquirerPhone,omitempty"`
	EnquirerEmail string `bson:"enquirerEmail,omitempty" json:"enquirerEmail,omitempty"`

	Message  string `bson:"message" json:"message"`
	Status   string `bson:"status" json:"status"`
	Response string `bson:"response,omitempty" json:"response,omitempty"`

	Images []PhotoReference `bson:"images,omitempty" json:"images,omitempty"`

	// Optional sighting data.
	LastSeenLocation string     `bson:"lastSeenLocation,omitempty" json:"lastSeenLocation,omitempty"`
	LastSeenDate     *time.Time `bson:"lastSeenDate,omitempty" json:"lastSeenDate,omitempty"`
	SightingDetails  string     `bson:"sightingDetails,omitempty" json:"sightingDetails,omitempty"`

	Location GeoPoint `bson:"location" json:"location"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func ValidEnquiryStatus(s string) bool {
	switch s {
	case EnquiryStatusPending, EnquiryStatusReviewed, EnquiryStatusResponded, EnquiryStatusClosed:
		return true
	}
	return false
}
