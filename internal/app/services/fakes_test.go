package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/notify"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// memDB backs every fake repository so joined fields stay consistent.
type memDB struct {
	mu         sync.Mutex
	nextID     int64
	students   map[int64]*models.Student
	companies  map[int64]*models.Company
	jobs       map[int64]*models.Job
	apps       map[int64]*models.Application
	certs      map[int64]*models.Certificate
	interviews map[int64]*models.Interview
	stages     map[int64][]string
}

func newMemDB() *memDB {
	return &memDB{
		nextID:     100,
		students:   map[int64]*models.Student{},
		companies:  map[int64]*models.Company{},
		jobs:       map[int64]*models.Job{},
		apps:       map[int64]*models.Application{},
		certs:      map[int64]*models.Certificate{},
		interviews: map[int64]*models.Interview{},
		stages:     map[int64][]string{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func ptr[T any](v T) *T { return &v }

// --- students

type fakeStudentRepo struct{ db *memDB }

func (r fakeStudentRepo) List(ctx context.Context) ([]*models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Student{}
	for _, id := range sortedIDs(r.db.students) {
		cp := *r.db.students[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeStudentRepo) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (r fakeStudentRepo) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.students {
		if s.UserID != nil && *s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r fakeStudentRepo) Create(ctx context.Context, s *models.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.students {
		if strings.EqualFold(existing.RollNumber, s.RollNumber) {
			return apperrors.ErrRollNumberAlreadyExists
		}
	}
	s.ID = r.db.id()
	cp := *s
	r.db.students[s.ID] = &cp
	return nil
}

func (r fakeStudentRepo) Update(ctx context.Context, s *models.Student) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.students[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	cp := *s
	r.db.students[s.ID] = &cp
	return nil
}

func (r fakeStudentRepo) UpdateResumeURL(ctx context.Context, id int64, url string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.ResumeURL = &url
	return nil
}

func (r fakeStudentRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.db.students, id)
	return nil
}

// --- companies

type fakeCompanyRepo struct{ db *memDB }

func (r fakeCompanyRepo) List(ctx context.Context) ([]*models.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Company{}
	for _, id := range sortedIDs(r.db.companies) {
		cp := *r.db.companies[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeCompanyRepo) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.companies[id]
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

func (r fakeCompanyRepo) GetByUserID(ctx context.Context, userID int64) (*models.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.companies {
		if c.UserID != nil && *c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCompanyNotFound
}

func (r fakeCompanyRepo) Create(ctx context.Context, c *models.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.ID = r.db.id()
	cp := *c
	r.db.companies[c.ID] = &cp
	return nil
}

func (r fakeCompanyRepo) Update(ctx context.Context, c *models.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.companies[c.ID]; !ok {
		return apperrors.ErrCompanyNotFound
	}
	cp := *c
	r.db.companies[c.ID] = &cp
	return nil
}

func (r fakeCompanyRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.companies, id)
	return nil
}

// --- jobs

type fakeJobRepo struct{ db *memDB }

func (r fakeJobRepo) List(ctx context.Context, f repositories.JobFilter) ([]*models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Job{}
	for _, id := range sortedIDs(r.db.jobs) {
		j := r.db.jobs[id]
		if f.CompanyID != nil && j.CompanyID != *f.CompanyID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeJobRepo) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (r fakeJobRepo) Create(ctx context.Context, j *models.Job) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.companies[j.CompanyID]
	if !ok {
		return apperrors.ErrCompanyNotFound
	}
	j.ID = r.db.id()
	j.CompanyName = c.Name
	cp := *j
	r.db.jobs[j.ID] = &cp
	return nil
}

func (r fakeJobRepo) Update(ctx context.Context, j *models.Job) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.jobs[j.ID]; !ok {
		return apperrors.ErrJobNotFound
	}
	cp := *j
	r.db.jobs[j.ID] = &cp
	return nil
}

func (r fakeJobRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.jobs, id)
	return nil
}

func (r fakeJobRepo) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, j := range r.db.jobs {
		if j.Status == models.JobOpen && !now.Before(j.Deadline) {
			j.Status = models.JobClosed
			n++
		}
	}
	return n, nil
}

// --- applications

type fakeApplicationRepo struct{ db *memDB }

// joined fills the fields the real repository reads through joins.
func (r fakeApplicationRepo) joined(a *models.Application) *models.Application {
	cp := *a
	if s, ok := r.db.students[a.StudentID]; ok {
		cp.StudentName, cp.RollNumber, cp.Department, cp.CGPA = s.Name, s.RollNumber, s.Department, s.CGPA
	}
	if j, ok := r.db.jobs[a.JobID]; ok {
		cp.JobTitle, cp.CompanyID, cp.CompanyName = j.Title, j.CompanyID, j.CompanyName
	}
	return &cp
}

func (r fakeApplicationRepo) List(ctx context.Context, f repositories.ApplicationFilter) ([]*models.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Application{}
	for _, id := range sortedIDs(r.db.apps) {
		a := r.joined(r.db.apps[id])
		if f.StudentID != nil && a.StudentID != *f.StudentID {
			continue
		}
		if f.JobID != nil && a.JobID != *f.JobID {
			continue
		}
		if f.CompanyID != nil && a.CompanyID != *f.CompanyID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r fakeApplicationRepo) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return r.joined(a), nil
}

func (r fakeApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.jobs[a.JobID]; !ok {
		return apperrors.ErrJobNotFound
	}
	for _, existing := range r.db.apps {
		if existing.StudentID == a.StudentID && existing.JobID == a.JobID {
			return apperrors.ErrAlreadyApplied
		}
	}
	a.ID = r.db.id()
	a.AppliedAt = time.Now()
	cp := *a
	r.db.apps[a.ID] = &cp
	if s, ok := r.db.students[a.StudentID]; ok && s.PlacementStatus == models.PlacementUnplaced {
		s.PlacementStatus = models.PlacementInProcess
	}
	return nil
}

func (r fakeApplicationRepo) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, remarks *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[id]
	if !ok || a.Status != from {
		return apperrors.ErrInvalidStatusTransition
	}
	a.Status = to
	if remarks != nil {
		a.Remarks = remarks
	}
	return nil
}

func (r fakeApplicationRepo) MarkSelected(ctx context.Context, app *models.Application, packageLPA float64, remarks *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[app.ID]
	if !ok || a.Status != models.ApplicationInterviewed {
		return apperrors.ErrInvalidStatusTransition
	}
	s := r.db.students[a.StudentID]
	if s.PlacementStatus == models.PlacementPlaced {
		return apperrors.ErrStudentAlreadyPlaced
	}
	j := r.db.jobs[a.JobID]
	c := r.db.companies[j.CompanyID]

	a.Status = models.ApplicationSelected
	if remarks != nil {
		a.Remarks = remarks
	}
	s.PlacementStatus = models.PlacementPlaced
	s.PlacedCompany = ptr(c.Name)
	s.PackageLPA = ptr(packageLPA)
	c.TotalHires++
	c.CurrentYearHires++
	return nil
}

func (r fakeApplicationRepo) Withdraw(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if a, ok := r.db.apps[id]; !ok || a.Status != models.ApplicationApplied {
		return apperrors.ErrApplicationNotWithdrawable
	}
	delete(r.db.apps, id)
	return nil
}

// --- certificates

type fakeCertificateRepo struct{ db *memDB }

func (r fakeCertificateRepo) List(ctx context.Context, studentID *int64) ([]*models.Certificate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Certificate{}
	for _, id := range sortedIDs(r.db.certs) {
		c := r.db.certs[id]
		if studentID != nil && c.StudentID != *studentID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeCertificateRepo) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.certs[id]
	if !ok {
		return nil, apperrors.ErrCertificateNotFound
	}
	cp := *c
	return &cp, nil
}

func (r fakeCertificateRepo) GetByHash(ctx context.Context, hash string) (*models.Certificate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.certs {
		if c.BlockchainHash != nil && strings.EqualFold(*c.BlockchainHash, hash) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCertificateNotFound
}

func (r fakeCertificateRepo) Create(ctx context.Context, c *models.Certificate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.students[c.StudentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	c.ID = r.db.id()
	cp := *c
	r.db.certs[c.ID] = &cp
	return nil
}

func (r fakeCertificateRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.certs[id]; !ok {
		return apperrors.ErrCertificateNotFound
	}
	delete(r.db.certs, id)
	return nil
}

func (r fakeCertificateRepo) SetStage(ctx context.Context, id int64, stage string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.certs[id]
	if !ok {
		return apperrors.ErrCertificateNotFound
	}
	c.IssueStage = ptr(stage)
	r.db.stages[id] = append(r.db.stages[id], stage)
	return nil
}

func (r fakeCertificateRepo) MarkIssued(ctx context.Context, id int64, hash string, blockNumber int64, issuedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.certs[id]
	if !ok {
		return apperrors.ErrCertificateNotFound
	}
	c.Verified = true
	c.BlockchainHash = ptr(hash)
	c.BlockNumber = ptr(blockNumber)
	c.IssuedAt = ptr(issuedAt)
	c.IssueStage = ptr("confirmed")
	r.db.stages[id] = append(r.db.stages[id], "confirmed")
	return nil
}

// --- interviews

type fakeInterviewRepo struct{ db *memDB }

func (r fakeInterviewRepo) joined(iv *models.Interview) *models.Interview {
	cp := *iv
	if a, ok := r.db.apps[iv.ApplicationID]; ok {
		cp.StudentID = a.StudentID
		if s, ok := r.db.students[a.StudentID]; ok {
			cp.StudentName = s.Name
		}
	}
	if j, ok := r.db.jobs[iv.JobID]; ok {
		cp.JobTitle, cp.CompanyID, cp.CompanyName = j.Title, j.CompanyID, j.CompanyName
	}
	return &cp
}

func (r fakeInterviewRepo) List(ctx context.Context, f repositories.InterviewFilter) ([]*models.Interview, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Interview{}
	for _, id := range sortedIDs(r.db.interviews) {
		iv := r.joined(r.db.interviews[id])
		if f.StudentID != nil && iv.StudentID != *f.StudentID {
			continue
		}
		if f.CompanyID != nil && iv.CompanyID != *f.CompanyID {
			continue
		}
		if f.JobID != nil && iv.JobID != *f.JobID {
			continue
		}
		out = append(out, iv)
	}
	return out, nil
}

func (r fakeInterviewRepo) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	iv, ok := r.db.interviews[id]
	if !ok {
		return nil, apperrors.ErrInterviewNotFound
	}
	return r.joined(iv), nil
}

func (r fakeInterviewRepo) countForDay(jobID int64, day time.Time) int {
	n := 0
	for _, iv := range r.db.interviews {
		if iv.JobID == jobID && iv.Status == models.InterviewScheduled && sameDay(iv.ScheduledAt, day) {
			n++
		}
	}
	return n
}

func (r fakeInterviewRepo) Create(ctx context.Context, iv *models.Interview, dailyCapacity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.countForDay(iv.JobID, iv.ScheduledAt) >= dailyCapacity {
		return apperrors.ErrSlotFull
	}
	iv.ID = r.db.id()
	r.db.interviews[iv.ID] = &models.Interview{
		ID: iv.ID, ApplicationID: iv.ApplicationID, JobID: iv.JobID, ScheduledAt: iv.ScheduledAt,
		DurationMinutes: iv.DurationMinutes, Mode: iv.Mode, Location: iv.Location, Status: iv.Status, Notes: iv.Notes,
	}
	*iv = *r.joined(r.db.interviews[iv.ID])
	return nil
}

func (r fakeInterviewRepo) Update(ctx context.Context, iv *models.Interview) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.interviews[iv.ID]; !ok {
		return apperrors.ErrInterviewNotFound
	}
	cp := *iv
	r.db.interviews[iv.ID] = &cp
	return nil
}

func (r fakeInterviewRepo) Reschedule(ctx context.Context, iv *models.Interview, dailyCapacity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	current, ok := r.db.interviews[iv.ID]
	if !ok {
		return apperrors.ErrInterviewNotFound
	}
	booked := r.countForDay(iv.JobID, iv.ScheduledAt)
	if current.Status == models.InterviewScheduled && sameDay(current.ScheduledAt, iv.ScheduledAt) {
		booked--
	}
	if booked >= dailyCapacity {
		return apperrors.ErrSlotFull
	}
	cp := *iv
	r.db.interviews[iv.ID] = &cp
	return nil
}

func (r fakeInterviewRepo) CountForDay(ctx context.Context, jobID int64, day time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.countForDay(jobID, day), nil
}

// --- collaborators

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Add(item notify.Notification) notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, item)
	return item
}

func (n *recordingNotifier) all() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.sent...)
}

type sentMail struct {
	Kind, To, Subject string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeEmail) record(kind, to, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Kind: kind, To: to, Subject: subject})
	return f.err
}

func (f *fakeEmail) SendVerificationEmail(toEmail, toName, token string) error {
	return f.record("verification", toEmail, token)
}

func (f *fakeEmail) SendWelcomeEmail(toEmail, toName string) error {
	return f.record("welcome", toEmail, "")
}

func (f *fakeEmail) SendPasswordResetEmail(toEmail, toName, token string) error {
	return f.record("reset", toEmail, token)
}

func (f *fakeEmail) SendApplicationStatusEmail(toEmail, toName, jobTitle, companyName, status string) error {
	return f.record("status", toEmail, status)
}

func (f *fakeEmail) SendInterviewScheduledEmail(toEmail, toName, jobTitle, companyName, when, mode string) error {
	return f.record("interview", toEmail, when)
}

// fixture wires fake repositories around one memDB.
type fixture struct {
	db           *memDB
	students     fakeStudentRepo
	companies    fakeCompanyRepo
	jobs         fakeJobRepo
	applications fakeApplicationRepo
	certs        fakeCertificateRepo
	interviews   fakeInterviewRepo
	authz        *auth.AuthorizationService
	notifier     *recordingNotifier
	email        *fakeEmail
	logger       zerolog.Logger
	now          time.Time
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{
		db:           db,
		students:     fakeStudentRepo{db},
		companies:    fakeCompanyRepo{db},
		jobs:         fakeJobRepo{db},
		applications: fakeApplicationRepo{db},
		certs:        fakeCertificateRepo{db},
		interviews:   fakeInterviewRepo{db},
		notifier:     &recordingNotifier{},
		email:        &fakeEmail{},
		logger:       zerolog.Nop(),
		now:          time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.authz = auth.NewAuthorizationService(f.students, f.companies)
	return f
}

var adminActor = auth.Actor{UserID: 1, Role: models.RoleAdmin}

func (f *fixture) addStudent(userID int64, name, dept string, cgpa float64) (*models.Student, auth.Actor) {
	s := &models.Student{
		UserID:          ptr(userID),
		Name:            name,
		Email:           strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@college.edu",
		RollNumber:      strings.ToUpper(dept) + name,
		Department:      dept,
		CGPA:            cgpa,
		GraduationYear:  2025,
		PlacementStatus: models.PlacementUnplaced,
	}
	_ = f.students.Create(context.Background(), s)
	return s, auth.Actor{UserID: userID, Role: models.RoleStudent}
}

func (f *fixture) addCompany(userID int64, name string) (*models.Company, auth.Actor) {
	c := &models.Company{UserID: ptr(userID), Name: name, Industry: "Software", ContactEmail: "hr@" + strings.ToLower(name) + ".example", Status: models.CompanyActive}
	_ = f.companies.Create(context.Background(), c)
	return c, auth.Actor{UserID: userID, Role: models.RoleCompany}
}

func (f *fixture) addJob(companyID int64, title string, minCGPA float64, depts ...string) *models.Job {
	j := &models.Job{
		CompanyID:          companyID,
		Title:              title,
		Type:               models.JobFullTime,
		MinPackage:         8,
		MaxPackage:         14,
		MinCGPA:            minCGPA,
		AllowedDepartments: depts,
		Openings:           3,
		Deadline:           f.now.Add(7 * 24 * time.Hour),
		Status:             models.JobOpen,
	}
	_ = f.jobs.Create(context.Background(), j)
	return j
}

func (f *fixture) addApplication(studentID, jobID int64, status models.ApplicationStatus) *models.Application {
	a := &models.Application{StudentID: studentID, JobID: jobID, Status: status}
	_ = f.applications.Create(context.Background(), a)
	return a
}

func (f *fixture) clock() func() time.Time {
	return func() time.Time { return f.now }
}

func searchAll() search.Options {
	return search.Options{Page: 1, Size: search.MaxPageSize}
}
