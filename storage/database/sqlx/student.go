package sqlxrepos

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kwanjiru/eduid/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckRegNoUniqueness(regNo string, excludedStudents ...student.Student) error {
	exclIDs := make([]int, 0, len(excludedStudents))
	for _, st := range excludedStudents {
		exclIDs = append(exclIDs, st.ID)
	}
	if len(exclIDs) == 0 {
		exclIDs = append(exclIDs, 0) // keep NOT IN well-formed
	}

	q, args, err := sqlx.In(`SELECT COUNT(*) FROM student WHERE reg_no = ? AND id NOT IN (?)`, regNo, exclIDs)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}
	var count int
	if err = repo.db.Get(&count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	if count > 0 {
		return student.ErrRegNoExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	const q = `
		INSERT INTO student (user_id, reg_no, full_name, course, class_level, blood_type, allergies,
		                     emergency_name, emergency_phone, photo_path, created_at, updated_at)
		VALUES (:user_id, :reg_no, :full_name, :course, :class_level, :blood_type, :allergies,
		        :emergency_name, :emergency_phone, :photo_path, :created_at, :updated_at)
		RETURNING id`
	rows, err := repo.db.NamedQuery(q, st)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&st.ID); err != nil {
			return student.Student{}, errors.Wrap(err, "creating student")
		}
	}
	return st, rows.Err()
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	var st student.Student
	err := repo.db.Get(&st, `SELECT * FROM student WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return st, err
}

func (repo *studentRepository) GetStudentByUserID(userID int) (student.Student, error) {
	var st student.Student
	err := repo.db.Get(&st, `SELECT * FROM student WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return st, err
}

func (repo *studentRepository) GetStudentByRegNo(regNo string) (student.Student, error) {
	var st student.Student
	err := repo.db.Get(&st, `SELECT * FROM student WHERE reg_no = $1`, regNo)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return st, err
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var students []student.Student
	err := repo.db.Select(&students, `SELECT * FROM student ORDER BY id`)
	return students, err
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	const q = `
		UPDATE student
		SET reg_no = :reg_no, full_name = :full_name, course = :course, class_level = :class_level,
		    blood_type = :blood_type, allergies = :allergies, emergency_name = :emergency_name,
		    emergency_phone = :emergency_phone, photo_path = :photo_path, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(q, st)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.Exec(repo.db.Rebind(q), args...)
	return err
}

func (repo *studentRepository) CreateSchoolID(sid student.SchoolID) (student.SchoolID, error) {
	const q = `
		INSERT INTO school_id (student_id, id_number, status, qr_path, valid_until,
		                       rejection_reason, notes, submitted_at, reviewed_at)
		VALUES (:student_id, :id_number, :status, :qr_path, :valid_until,
		        :rejection_reason, :notes, :submitted_at, :reviewed_at)
		RETURNING id`
	rows, err := repo.db.NamedQuery(q, sid)
	if err != nil {
		return student.SchoolID{}, errors.Wrap(err, "creating school ID")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&sid.ID); err != nil {
			return student.SchoolID{}, errors.Wrap(err, "creating school ID")
		}
	}
	return sid, rows.Err()
}

func (repo *studentRepository) GetSchoolIDByID(id int) (student.SchoolID, error) {
	var sid student.SchoolID
	err := repo.db.Get(&sid, `SELECT * FROM school_id WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.SchoolID{}, student.ErrSubmissionNotFound
	}
	return sid, err
}

func (repo *studentRepository) GetLatestSchoolIDByStudent(studentID int) (student.SchoolID, error) {
	var sid student.SchoolID
	err := repo.db.Get(&sid,
		`SELECT * FROM school_id WHERE student_id = $1 ORDER BY submitted_at DESC, id DESC LIMIT 1`, studentID)
	if err == sql.ErrNoRows {
		return student.SchoolID{}, student.ErrSubmissionNotFound
	}
	return sid, err
}

func (repo *studentRepository) FilterSubmissions(filter student.QueryFilter) ([]student.Submission, int, error) {
	where, args := "", []interface{}{}
	if filter.Status != "" {
		where = "WHERE status = $1"
		args = append(args, filter.Status)
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM school_id `+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting submissions")
	}

	limit := strconv.Itoa(len(args) + 1)
	offset := strconv.Itoa(len(args) + 2)
	q := `SELECT * FROM school_id ` + where +
		` ORDER BY submitted_at DESC, id DESC LIMIT $` + limit + ` OFFSET $` + offset
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	var sids []student.SchoolID
	if err := repo.db.Select(&sids, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering submissions")
	}

	subs, err := repo.attachStudents(sids)
	return subs, total, err
}

func (repo *studentRepository) GetSubmissionsByID(ids ...int) ([]student.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT * FROM school_id WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building submissions query")
	}
	var sids []student.SchoolID
	if err = repo.db.Select(&sids, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "fetching submissions")
	}

	// preserve the caller's ordering; unknown ids are omitted
	byID := make(map[int]student.SchoolID, len(sids))
	for _, sid := range sids {
		byID[sid.ID] = sid
	}
	ordered := make([]student.SchoolID, 0, len(sids))
	for _, id := range ids {
		if sid, ok := byID[id]; ok {
			ordered = append(ordered, sid)
		}
	}
	return repo.attachStudents(ordered)
}

func (repo *studentRepository) UpdateSchoolID(sid student.SchoolID) (student.SchoolID, error) {
	const q = `
		UPDATE school_id
		SET id_number = :id_number, status = :status, qr_path = :qr_path, valid_until = :valid_until,
		    rejection_reason = :rejection_reason, notes = :notes, reviewed_at = :reviewed_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(q, sid)
	if err != nil {
		return student.SchoolID{}, errors.Wrap(err, "updating school ID")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.SchoolID{}, student.ErrSubmissionNotFound
	}
	return sid, nil
}

func (repo *studentRepository) CountByStatus() (student.Stats, error) {
	rows, err := repo.db.Queryx(`SELECT status, COUNT(*) AS count FROM school_id GROUP BY status`)
	if err != nil {
		return student.Stats{}, errors.Wrap(err, "counting by status")
	}
	defer func() { _ = rows.Close() }()

	var stats student.Stats
	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return student.Stats{}, errors.Wrap(err, "counting by status")
		}
		switch status {
		case student.StatusPending:
			stats.Pending = count
		case student.StatusApproved:
			stats.Approved = count
		case student.StatusRejected:
			stats.Rejected = count
		case student.StatusPrinted:
			stats.Printed = count
		}
		stats.Total += count
	}
	return stats, rows.Err()
}

func (repo *studentRepository) DeleteRejectedBefore(t time.Time) (int, error) {
	res, err := repo.db.Exec(
		`DELETE FROM school_id WHERE status = $1 AND reviewed_at < $2`, student.StatusRejected, t)
	if err != nil {
		return 0, errors.Wrap(err, "purging rejected submissions")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *studentRepository) attachStudents(sids []student.SchoolID) ([]student.Submission, error) {
	subs := make([]student.Submission, 0, len(sids))
	if len(sids) == 0 {
		return subs, nil
	}

	stIDs := make([]int, 0, len(sids))
	for _, sid := range sids {
		stIDs = append(stIDs, sid.StudentID)
	}
	q, args, err := sqlx.In(`SELECT * FROM student WHERE id IN (?)`, stIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}
	var students []student.Student
	if err = repo.db.Select(&students, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "fetching students")
	}

	byID := make(map[int]student.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	for _, sid := range sids {
		subs = append(subs, student.Submission{SchoolID: sid, Student: byID[sid.StudentID]})
	}
	return subs, nil
}
