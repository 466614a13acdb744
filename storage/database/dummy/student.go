package dummydb

import (
	"sort"
	"time"

	"github.com/kwanjiru/eduid/core/student"
)

type studentRepository struct {
	db   *studentTable
	sids *schoolIDTable

	pkCount    int
	sidPkCount int
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student, sids: db.schoolID}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) querySchoolIDs() []student.SchoolID {
	sids := make([]student.SchoolID, 0, len(repo.sids.table))
	for _, sid := range repo.sids.table {
		sids = append(sids, *sid)
	}
	// most recent first
	sort.Slice(sids, func(i, j int) bool {
		if sids[i].SubmittedAt.Equal(sids[j].SubmittedAt) {
			return sids[i].ID > sids[j].ID
		}
		return sids[i].SubmittedAt.After(sids[j].SubmittedAt)
	})
	return sids
}

func (repo *studentRepository) CheckRegNoUniqueness(regNo string, excludedStudents ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[int]bool, len(excludedStudents))
	for _, st := range excludedStudents {
		excluded[st.ID] = true
	}

	for _, st := range repo.query() {
		if st.RegNo == regNo && !excluded[st.ID] {
			return student.ErrRegNoExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.pkCount++
	st.ID = repo.pkCount
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(userID int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.query() {
		if st.UserID == userID {
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByRegNo(regNo string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.query() {
		if st.RegNo == regNo {
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.sids.Lock()
	defer repo.sids.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
		// cascade, like the FK does
		for sidID, sid := range repo.sids.table {
			if sid.StudentID == id {
				delete(repo.sids.table, sidID)
			}
		}
	}
	return nil
}

func (repo *studentRepository) CreateSchoolID(sid student.SchoolID) (student.SchoolID, error) {
	repo.sids.Lock()
	defer repo.sids.Unlock()

	repo.sidPkCount++
	sid.ID = repo.sidPkCount
	repo.sids.table[sid.ID] = &sid
	return sid, nil
}

func (repo *studentRepository) GetSchoolIDByID(id int) (student.SchoolID, error) {
	repo.sids.RLock()
	defer repo.sids.RUnlock()

	if sid, ok := repo.sids.table[id]; ok {
		return *sid, nil
	}
	return student.SchoolID{}, student.ErrSubmissionNotFound
}

func (repo *studentRepository) GetLatestSchoolIDByStudent(studentID int) (student.SchoolID, error) {
	repo.sids.RLock()
	defer repo.sids.RUnlock()

	for _, sid := range repo.querySchoolIDs() {
		if sid.StudentID == studentID {
			return sid, nil
		}
	}
	return student.SchoolID{}, student.ErrSubmissionNotFound
}

func (repo *studentRepository) FilterSubmissions(filter student.QueryFilter) ([]student.Submission, int, error) {
	repo.sids.RLock()
	sids := repo.querySchoolIDs()
	repo.sids.RUnlock()

	if filter.Status != "" {
		filtered := sids[:0]
		for _, sid := range sids {
			if sid.Status == filter.Status {
				filtered = append(filtered, sid)
			}
		}
		sids = filtered
	}
	total := len(sids)

	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return repo.attachStudents(sids[start:end]), total, nil
}

func (repo *studentRepository) GetSubmissionsByID(ids ...int) ([]student.Submission, error) {
	repo.sids.RLock()
	sids := make([]student.SchoolID, 0, len(ids))
	for _, id := range ids {
		if sid, ok := repo.sids.table[id]; ok {
			sids = append(sids, *sid)
		}
	}
	repo.sids.RUnlock()
	return repo.attachStudents(sids), nil
}

func (repo *studentRepository) UpdateSchoolID(sid student.SchoolID) (student.SchoolID, error) {
	repo.sids.Lock()
	defer repo.sids.Unlock()

	if _, ok := repo.sids.table[sid.ID]; !ok {
		return student.SchoolID{}, student.ErrSubmissionNotFound
	}
	repo.sids.table[sid.ID] = &sid
	return sid, nil
}

func (repo *studentRepository) CountByStatus() (student.Stats, error) {
	repo.sids.RLock()
	defer repo.sids.RUnlock()

	var stats student.Stats
	for _, sid := range repo.sids.table {
		switch sid.Status {
		case student.StatusPending:
			stats.Pending++
		case student.StatusApproved:
			stats.Approved++
		case student.StatusRejected:
			stats.Rejected++
		case student.StatusPrinted:
			stats.Printed++
		}
		stats.Total++
	}
	return stats, nil
}

func (repo *studentRepository) DeleteRejectedBefore(t time.Time) (int, error) {
	repo.sids.Lock()
	defer repo.sids.Unlock()

	var n int
	for id, sid := range repo.sids.table {
		if sid.Status == student.StatusRejected && sid.ReviewedAt.Before(t) {
			delete(repo.sids.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *studentRepository) attachStudents(sids []student.SchoolID) []student.Submission {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]student.Submission, 0, len(sids))
	for _, sid := range sids {
		sub := student.Submission{SchoolID: sid}
		if st, ok := repo.db.table[sid.StudentID]; ok {
			sub.Student = *st
		}
		subs = append(subs, sub)
	}
	return subs
}
