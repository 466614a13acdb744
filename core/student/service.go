package student

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/kwanjiru/eduid/core"
	"github.com/kwanjiru/eduid/core/card"
)

var (
	// errors
	ErrNotFound           = errors.New("student not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrRegNoExists        = errors.New("a student with this registration number already exists")
	ErrAlreadySubmitted   = errors.New("an active submission already exists")
	ErrNotReviewable      = errors.New("submission is not pending review")

	// NowFunc is mockable in tests.
	NowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Repository interface {
		CheckRegNoUniqueness(regNo string, excludedStudents ...Student) error
		CreateStudent(st Student) (Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentByUserID(userID int) (Student, error)
		GetStudentByRegNo(regNo string) (Student, error)
		QueryAllStudents() ([]Student, error)
		UpdateStudent(st Student) (Student, error)
		DeleteStudentsByID(ids ...int) error

		CreateSchoolID(sid SchoolID) (SchoolID, error)
		GetSchoolIDByID(id int) (SchoolID, error)
		// GetLatestSchoolIDByStudent returns the most recently submitted SchoolID.
		GetLatestSchoolIDByStudent(studentID int) (SchoolID, error)
		// FilterSubmissions applies the filter and returns one page plus the total match count,
		// most recent submissions first.
		FilterSubmissions(filter QueryFilter) ([]Submission, int, error)
		// GetSubmissionsByID returns submissions in the order the ids were given;
		// unknown ids are omitted.
		GetSubmissionsByID(ids ...int) ([]Submission, error)
		UpdateSchoolID(sid SchoolID) (SchoolID, error)
		CountByStatus() (Stats, error)
		// DeleteRejectedBefore removes rejected submissions reviewed before t,
		// returning how many were removed.
		DeleteRejectedBefore(t time.Time) (int, error)
	}

	Service struct {
		conf  *core.Config
		repo  Repository
		qrSvc core.QRService
		log   core.Logger
	}
)

func NewService(conf *core.Config, repo Repository, qrSvc core.QRService, log core.Logger) *Service {
	return &Service{
		conf:  conf,
		repo:  repo,
		qrSvc: qrSvc,
		log:   log,
	}
}

func (svc *Service) checkRegNoUniqueness(regNo string, exclStudents ...Student) error {
	if err := svc.repo.CheckRegNoUniqueness(regNo, exclStudents...); err != nil {
		if err == ErrRegNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "reg_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a student profile for a user account and opens
// their first (pending) card submission.
func (svc *Service) Register(userID int, ns NewStudent) (Student, SchoolID, error) {
	now := NowFunc()
	st := Student{
		UserID:         userID,
		RegNo:          ns.RegNo,
		FullName:       ns.FullName,
		Course:         ns.Course,
		ClassLevel:     ns.ClassLevel,
		BloodType:      ns.BloodType,
		Allergies:      ns.Allergies,
		EmergencyName:  ns.EmergencyName,
		EmergencyPhone: ns.EmergencyPhone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	st, err := svc.repo.CreateStudent(st)
	if err != nil {
		return Student{}, SchoolID{}, err
	}

	sid, err := svc.Submit(st.ID)
	if err != nil {
		return st, SchoolID{}, err
	}
	return st, sid, nil
}

// Submit opens a new pending submission for a student. Only one pending or
// approved submission may exist at a time; a rejected one may be resubmitted.
func (svc *Service) Submit(studentID int) (SchoolID, error) {
	if last, err := svc.repo.GetLatestSchoolIDByStudent(studentID); err == nil {
		if last.Status == StatusPending || last.Status == StatusApproved {
			return SchoolID{}, ErrAlreadySubmitted
		}
	} else if err != ErrSubmissionNotFound {
		return SchoolID{}, err
	}

	now := NowFunc()
	sid, err := svc.repo.CreateSchoolID(SchoolID{
		StudentID:   studentID,
		Status:      StatusPending,
		SubmittedAt: now,
	})
	if err != nil {
		return SchoolID{}, err
	}

	// the ID number is derived from the record's own primary key
	sid.IDNumber = fmt.Sprintf("EDU%d-%05d", now.Year(), sid.ID)
	return svc.repo.UpdateSchoolID(sid)
}

func (svc *Service) GetByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) GetByUserID(userID int) (Student, error) {
	return svc.repo.GetStudentByUserID(userID)
}

func (svc *Service) GetByRegNo(regNo string) (Student, error) {
	return svc.repo.GetStudentByRegNo(core.CleanString(regNo))
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

func (svc *Service) UpdateProfile(id int, us UpdateStudent) (Student, error) {
	st, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	if us.FullName != "" {
		st.FullName = us.FullName
	}
	st.Course = us.Course
	st.ClassLevel = us.ClassLevel
	st.BloodType = us.BloodType
	st.Allergies = us.Allergies
	st.EmergencyName = us.EmergencyName
	st.EmergencyPhone = us.EmergencyPhone
	st.UpdatedAt = NowFunc()
	return svc.repo.UpdateStudent(st)
}

// SetPhoto records the media-root-relative path of an uploaded passport photo.
func (svc *Service) SetPhoto(id int, relPath string) (Student, error) {
	st, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	st.PhotoPath = relPath
	st.UpdatedAt = NowFunc()
	return svc.repo.UpdateStudent(st)
}

func (svc *Service) Submissions(filter QueryFilter) ([]Submission, int, error) {
	filter.Clean()
	return svc.repo.FilterSubmissions(filter)
}

func (svc *Service) GetSubmission(id int) (Submission, error) {
	sid, err := svc.repo.GetSchoolIDByID(id)
	if err != nil {
		return Submission{}, err
	}
	st, err := svc.repo.GetStudentByID(sid.StudentID)
	if err != nil {
		return Submission{}, err
	}
	return Submission{SchoolID: sid, Student: st}, nil
}

func (svc *Service) LatestSubmission(studentID int) (SchoolID, error) {
	return svc.repo.GetLatestSchoolIDByStudent(studentID)
}

// Review applies an admin decision to a pending submission. Approval resolves
// the validity date (defaulting to one year from the review) and generates the
// verification QR code keyed by the ID number.
func (svc *Service) Review(id int, r Review) (SchoolID, error) {
	sid, err := svc.repo.GetSchoolIDByID(id)
	if err != nil {
		return SchoolID{}, err
	}
	if sid.Status != StatusPending {
		return SchoolID{}, ErrNotReviewable
	}

	now := NowFunc()
	sid.Status = r.Status
	sid.Notes = r.Notes
	sid.ReviewedAt = now

	switch r.Status {
	case StatusRejected:
		sid.RejectionReason = r.RejectionReason
	case StatusApproved:
		sid.ValidUntil = r.ValidUntil
		if sid.ValidUntil == "" {
			sid.ValidUntil = now.AddDate(1, 0, 0).Format("Jan 2006")
		}
		relPath := filepath.Join("qrcodes", sid.IDNumber+".png")
		if err := svc.qrSvc.Generate(sid.IDNumber, filepath.Join(svc.conf.MediaRoot, relPath)); err != nil {
			// the card renders with a blank QR block; not fatal
			svc.log.Warn("generating QR code", pkgerrors.Wrap(err, sid.IDNumber))
		} else {
			sid.QRPath = relPath
		}
	}
	return svc.repo.UpdateSchoolID(sid)
}

// MarkPrinted flips approved submissions to printed. Returns how many were flipped.
func (svc *Service) MarkPrinted(ids ...int) (int, error) {
	var n int
	for _, id := range ids {
		sid, err := svc.repo.GetSchoolIDByID(id)
		if err != nil {
			if err == ErrSubmissionNotFound {
				continue
			}
			return n, err
		}
		if sid.Status != StatusApproved {
			continue
		}
		sid.Status = StatusPrinted
		if _, err := svc.repo.UpdateSchoolID(sid); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (svc *Service) Stats() (Stats, error) {
	stats, err := svc.repo.CountByStatus()
	if err != nil {
		return Stats{}, err
	}
	if stats.Total > 0 {
		done := stats.Approved + stats.Printed
		stats.ApprovalRate = float64(done) / float64(stats.Total) * 100
	}
	return stats, nil
}

// PrintableSubmissions returns the approved submissions among ids, in the given order.
func (svc *Service) PrintableSubmissions(ids ...int) ([]Submission, error) {
	subs, err := svc.repo.GetSubmissionsByID(ids...)
	if err != nil {
		return nil, err
	}
	printable := subs[:0]
	for _, sub := range subs {
		if sub.SchoolID.Status == StatusApproved || sub.SchoolID.Status == StatusPrinted {
			printable = append(printable, sub)
		}
	}
	return printable, nil
}

// PurgeRejected removes rejected submissions reviewed before the cutoff.
func (svc *Service) PurgeRejected(olderThan time.Time) (int, error) {
	return svc.repo.DeleteRejectedBefore(olderThan)
}

// CardField resolves one submission into the flat field map the card engine
// consumes: asset references become absolute paths of existing files or stay
// empty, and institution branding comes from config.
func (svc *Service) CardField(sub Submission) card.CardField {
	fld := card.CardField{
		FullName:       sub.Student.FullName,
		RegNo:          sub.Student.RegNo,
		IDNumber:       sub.SchoolID.IDNumber,
		Course:         sub.Student.Course,
		ClassLevel:     sub.Student.ClassLevel,
		ValidUntil:     sub.SchoolID.ValidUntil,
		BloodType:      sub.Student.BloodType,
		Allergies:      sub.Student.Allergies,
		EmergencyName:  sub.Student.EmergencyName,
		EmergencyPhone: sub.Student.EmergencyPhone,

		SchoolName:  svc.conf.School.Name,
		SchoolMotto: svc.conf.School.Motto,
		ColorHex:    svc.conf.School.ColorHex,

		PhotoPath: svc.resolveAsset(sub.Student.PhotoPath),
		QRPath:    svc.resolveAsset(sub.SchoolID.QRPath),
		LogoPath:  svc.resolveAsset(svc.conf.School.LogoPath),
	}
	return fld
}

// resolveAsset turns a media-root-relative path into an absolute path,
// or "" when the file does not exist.
func (svc *Service) resolveAsset(relPath string) string {
	if relPath == "" {
		return ""
	}
	abs := relPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(svc.conf.MediaRoot, relPath)
	}
	if _, err := os.Stat(abs); err != nil {
		return ""
	}
	return abs
}
