package student

import (
	"time"

	"github.com/kwanjiru/eduid/core"
)

// SchoolID submission statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPrinted  = "printed"
)

var AllStatuses = []string{StatusPending, StatusApproved, StatusRejected, StatusPrinted}

type Student struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	RegNo          string    `json:"reg_no" db:"reg_no"`
	FullName       string    `json:"full_name" db:"full_name"`
	Course         string    `json:"course" db:"course"`
	ClassLevel     string    `json:"class_level" db:"class_level"`
	BloodType      string    `json:"blood_type" db:"blood_type"`
	Allergies      string    `json:"allergies" db:"allergies"`
	EmergencyName  string    `json:"emergency_name" db:"emergency_name"`
	EmergencyPhone string    `json:"emergency_phone" db:"emergency_phone"`
	PhotoPath      string    `json:"photo_path" db:"photo_path"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// SchoolID is one card submission for a Student, moving through
// pending -> approved|rejected -> printed.
type SchoolID struct {
	ID              int       `json:"id" db:"id"`
	StudentID       int       `json:"student_id" db:"student_id"`
	IDNumber        string    `json:"id_number" db:"id_number"`
	Status          string    `json:"status" db:"status"`
	QRPath          string    `json:"qr_path" db:"qr_path"`
	ValidUntil      string    `json:"valid_until" db:"valid_until"` // pre-formatted display string
	RejectionReason string    `json:"rejection_reason" db:"rejection_reason"`
	Notes           string    `json:"notes" db:"notes"`
	SubmittedAt     time.Time `json:"submitted_at" db:"submitted_at"` // UTC
	ReviewedAt      time.Time `json:"reviewed_at" db:"reviewed_at"`   // UTC
}

// Submission pairs a SchoolID with its Student for list views and rendering.
type Submission struct {
	SchoolID SchoolID `json:"school_id"`
	Student  Student  `json:"student"`
}

// NewStudent contains the profile data submitted by a student.
type NewStudent struct {
	RegNo          string `json:"reg_no" validate:"required,max=30,alphanum_"`
	FullName       string `json:"full_name" validate:"required,max=120"`
	Course         string `json:"course" validate:"max=120"`
	ClassLevel     string `json:"class_level" validate:"max=60"`
	BloodType      string `json:"blood_type" validate:"max=8"`
	Allergies      string `json:"allergies" validate:"max=120"`
	EmergencyName  string `json:"emergency_name" validate:"max=120"`
	EmergencyPhone string `json:"emergency_phone" validate:"max=30"`
}

func (ns *NewStudent) Validate(svc *Service) error {
	ns.RegNo = core.CleanString(ns.RegNo)
	ns.FullName = core.CleanString(ns.FullName)
	ns.Course = core.CleanString(ns.Course)
	ns.ClassLevel = core.CleanString(ns.ClassLevel)
	ns.BloodType = core.CleanString(ns.BloodType)
	ns.Allergies = core.CleanString(ns.Allergies)
	ns.EmergencyName = core.CleanString(ns.EmergencyName)
	ns.EmergencyPhone = core.CleanString(ns.EmergencyPhone)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkRegNoUniqueness(ns.RegNo)
}

// UpdateStudent defines what profile information may be modified.
// Empty fields keep their current values.
type UpdateStudent struct {
	FullName       string `json:"full_name" validate:"omitempty,max=120"`
	Course         string `json:"course" validate:"max=120"`
	ClassLevel     string `json:"class_level" validate:"max=60"`
	BloodType      string `json:"blood_type" validate:"max=8"`
	Allergies      string `json:"allergies" validate:"max=120"`
	EmergencyName  string `json:"emergency_name" validate:"max=120"`
	EmergencyPhone string `json:"emergency_phone" validate:"max=30"`
}

func (us *UpdateStudent) Validate() error {
	us.FullName = core.CleanString(us.FullName)
	us.Course = core.CleanString(us.Course)
	us.ClassLevel = core.CleanString(us.ClassLevel)
	us.BloodType = core.CleanString(us.BloodType)
	us.Allergies = core.CleanString(us.Allergies)
	us.EmergencyName = core.CleanString(us.EmergencyName)
	us.EmergencyPhone = core.CleanString(us.EmergencyPhone)
	return core.Validate.Struct(us)
}

// Review is an admin decision on a pending submission.
type Review struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejection_reason" validate:"required_if=Status rejected,max=255"`
	Notes           string `json:"notes" validate:"max=255"`
	ValidUntil      string `json:"valid_until" validate:"max=30"` // optional pre-formatted display string
}

func (r *Review) Validate() error {
	r.Status = core.CleanString(r.Status, true /* lower */)
	r.RejectionReason = core.CleanString(r.RejectionReason)
	r.Notes = core.CleanString(r.Notes)
	r.ValidUntil = core.CleanString(r.ValidUntil)
	return core.Validate.Struct(r)
}

// QueryFilter narrows and pages submission listings.
type QueryFilter struct {
	Status   string `query:"status"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	if qf.Status == "all" {
		qf.Status = ""
	}
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.PageSize < 1 || qf.PageSize > 100 {
		qf.PageSize = 10
	}
}

// Stats summarizes the submission pipeline for the admin dashboard.
type Stats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	Printed      int     `json:"printed"`
	ApprovalRate float64 `json:"approval_rate"`
}
