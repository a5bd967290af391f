package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

// --- citizens ---

type memCitizens struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.Citizen
	appendErr error
}

func newMemCitizens() *memCitizens {
	return &memCitizens{byID: map[uuid.UUID]*models.Citizen{}}
}

func cloneCitizen(c *models.Citizen) *models.Citizen {
	cp := *c
	cp.Reports = append([]models.LedgerEntry(nil), c.Reports...)
	return &cp
}

func (m *memCitizens) FindByEmail(_ context.Context, email string) (*models.Citizen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.Email == email {
			return cloneCitizen(c), nil
		}
	}
	return nil, apperr.NotFound("citizen not found")
}

func (m *memCitizens) FindByID(_ context.Context, id uuid.UUID) (*models.Citizen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("citizen not found")
	}
	return cloneCitizen(c), nil
}

func (m *memCitizens) Create(_ context.Context, c *models.Citizen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == c.Email {
			return apperr.Conflict("duplicate email")
		}
	}
	m.byID[c.ID] = cloneCitizen(c)
	return nil
}

func (m *memCitizens) UpdatePending(_ context.Context, c *models.Citizen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[c.ID]
	if !ok {
		return apperr.NotFound("citizen not found")
	}
	stored.Name = c.Name
	stored.PasswordHash = c.PasswordHash
	stored.OTPHash = c.OTPHash
	stored.OTPExpiresAt = c.OTPExpiresAt
	return nil
}

func (m *memCitizens) MarkVerified(_ context.Context, id uuid.UUID, otpHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return apperr.NotFound("citizen not found")
	}
	if c.Verified || c.OTPHash == nil || *c.OTPHash != otpHash {
		return apperr.Conflict("User is already verified.").WithCode("already_verified")
	}
	c.Verified = true
	c.OTPHash = nil
	c.OTPExpiresAt = nil
	return nil
}

func (m *memCitizens) AppendLedger(_ context.Context, citizenID uuid.UUID, entry models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	c, ok := m.byID[citizenID]
	if !ok {
		return apperr.NotFound("citizen not found")
	}
	c.Reports = append(c.Reports, entry)
	return nil
}

// put stores a verified citizen directly.
func (m *memCitizens) put(name, email string, ledger ...models.LedgerEntry) *models.Citizen {
	c := &models.Citizen{ID: uuid.New(), Name: name, Email: email, Verified: true, Reports: ledger}
	m.mu.Lock()
	m.byID[c.ID] = cloneCitizen(c)
	m.mu.Unlock()
	return c
}

func (m *memCitizens) ledger(id uuid.UUID) []models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.LedgerEntry(nil), m.byID[id].Reports...)
}

// --- employees ---

type memEmployees struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Employee
}

func newMemEmployees() *memEmployees {
	return &memEmployees{byID: map[uuid.UUID]*models.Employee{}}
}

func (m *memEmployees) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("employee not found")
}

func (m *memEmployees) FindByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("employee not found")
	}
	cp := *e
	return &cp, nil
}

func (m *memEmployees) Create(_ context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == e.Email {
			return apperr.Conflict("duplicate email")
		}
	}
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memEmployees) List(_ context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Employee, 0, len(m.byID))
	for _, e := range m.byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memEmployees) SetActive(_ context.Context, id uuid.UUID, active bool) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("employee not found")
	}
	e.Active = active
	cp := *e
	return &cp, nil
}

func (m *memEmployees) CountByRole(_ context.Context, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.byID {
		if e.Role == role {
			n++
		}
	}
	return n, nil
}

// --- reports ---

type memReports struct {
	mu       sync.Mutex
	order    []uuid.UUID
	byID     map[uuid.UUID]*models.Report
	citizens *memCitizens
}

func newMemReports(citizens *memCitizens) *memReports {
	return &memReports{byID: map[uuid.UUID]*models.Report{}, citizens: citizens}
}

func cloneReport(r *models.Report) *models.Report {
	cp := *r
	cp.Upvotes = append([]uuid.UUID{}, r.Upvotes...)
	return &cp
}

func (m *memReports) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = cloneReport(r)
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memReports) FindByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("report not found")
	}
	return cloneReport(r), nil
}

func (m *memReports) view(r *models.Report) models.ReportView {
	v := models.ReportView{Report: *cloneReport(r)}
	v.Submitter.ID = r.SubmittedBy
	if m.citizens != nil {
		m.citizens.mu.Lock()
		if c, ok := m.citizens.byID[r.SubmittedBy]; ok {
			v.Submitter.Name = c.Name
			v.Submitter.Email = c.Email
		}
		m.citizens.mu.Unlock()
	}
	return v
}

func (m *memReports) FindView(_ context.Context, id uuid.UUID) (*models.ReportView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("report not found")
	}
	v := m.view(r)
	return &v, nil
}

func (m *memReports) List(_ context.Context, f models.ReportFilter) ([]models.ReportView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReportView
	// Newest insertion first, then a stable sort on creation time.
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.byID[m.order[i]]
		if f.District != "" && r.Location.District != f.District {
			continue
		}
		if f.SubmittedBy != uuid.Nil && r.SubmittedBy != f.SubmittedBy {
			continue
		}
		out = append(out, m.view(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memReports) UpdateStatus(_ context.Context, id uuid.UUID, status models.ReportStatus) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("report not found")
	}
	r.Status = status
	return cloneReport(r), nil
}

func (m *memReports) ToggleUpvote(_ context.Context, reportID, citizenID uuid.UUID) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[reportID]
	if !ok {
		return false, 0, apperr.NotFound("report not found")
	}
	for i, id := range r.Upvotes {
		if id == citizenID {
			r.Upvotes = append(r.Upvotes[:i], r.Upvotes[i+1:]...)
			return false, len(r.Upvotes), nil
		}
	}
	r.Upvotes = append(r.Upvotes, citizenID)
	return true, len(r.Upvotes), nil
}

func (m *memReports) count(key func(*models.Report) (string, bool)) []models.AreaCount {
	counts := map[string]int{}
	for _, r := range m.byID {
		if k, ok := key(r); ok {
			counts[k]++
		}
	}
	out := make([]models.AreaCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.AreaCount{Area: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out
}

func (m *memReports) CountByDistrict(_ context.Context) ([]models.AreaCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count(func(r *models.Report) (string, bool) { return r.Location.District, true }), nil
}

func (m *memReports) CountByBlock(_ context.Context, district string) ([]models.AreaCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count(func(r *models.Report) (string, bool) {
		return r.Location.Block, r.Location.District == district
	}), nil
}

func (m *memReports) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// --- authorities ---

type memAuthorities struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.Authority
}

func newMemAuthorities() *memAuthorities {
	return &memAuthorities{byID: map[uuid.UUID]models.Authority{}}
}

func (m *memAuthorities) Create(_ context.Context, a *models.Authority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Location == a.Location {
			return apperr.Conflict("duplicate location")
		}
	}
	m.byID[a.ID] = *a
	return nil
}

func (m *memAuthorities) List(_ context.Context) ([]models.Authority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Authority, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.District < out[j].Location.District })
	return out, nil
}

func (m *memAuthorities) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFound("authority not found")
	}
	delete(m.byID, id)
	return nil
}

// --- activity ---

type memActivity struct {
	mu        sync.Mutex
	entries   []models.ActivityLog
	insertErr error
}

func (m *memActivity) Insert(_ context.Context, e *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memActivity) Recent(_ context.Context, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memActivity) ByReport(_ context.Context, reportID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if e := m.entries[i]; e.ReportID != nil && *e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memActivity) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// --- mail and uploads ---

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, body)
	return nil
}

// lastOTP returns the code from the most recent mail.
func (m *fakeMailer) lastOTP(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	code := otpPattern.FindString(m.sent[len(m.sent)-1])
	if code == "" {
		t.Fatalf("no OTP in mail body %q", m.sent[len(m.sent)-1])
	}
	return code
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, contentType, folder string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return "https://img.example.test/" + folder + "/" + uuid.NewString(), nil
}

// --- wiring ---

type fixture struct {
	citizens    *memCitizens
	employees   *memEmployees
	reports     *memReports
	authorities *memAuthorities
	activityLog *memActivity
	mailer      *fakeMailer
	uploader    *fakeUploader
	tokens      *auth.TokenIssuer

	citizenSvc   *CitizenService
	employeeSvc  *EmployeeService
	reportSvc    *ReportService
	authoritySvc *AuthorityService
	analyticsSvc *AnalyticsService
	activitySvc  *ActivityLogService
}

var testZone = time.FixedZone("IST", 5*3600+30*60)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop().Sugar()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "services-test-secret"})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	f := &fixture{
		citizens:    newMemCitizens(),
		employees:   newMemEmployees(),
		authorities: newMemAuthorities(),
		activityLog: &memActivity{},
		mailer:      &fakeMailer{},
		uploader:    &fakeUploader{},
		tokens:      tokens,
	}
	f.reports = newMemReports(f.citizens)

	authz := access.NewAuthorizer(logger)
	f.activitySvc = NewActivityLogService(f.activityLog, authz, logger)
	f.citizenSvc = NewCitizenService(f.citizens, tokens, f.mailer, 0, logger)
	f.employeeSvc = NewEmployeeService(f.employees, tokens, authz, f.activitySvc, logger)
	f.reportSvc = NewReportService(f.reports, f.citizens, f.uploader, authz, f.activitySvc,
		ReportConfig{DailyLimit: 3, TimeZone: testZone}, logger)
	f.authoritySvc = NewAuthorityService(f.authorities, authz, f.activitySvc, logger)
	f.analyticsSvc = NewAnalyticsService(f.reports, authz, logger)
	return f
}

// seedReport stores a report directly, bypassing submission rules.
func (f *fixture) seedReport(t *testing.T, by uuid.UUID, district, block string, at time.Time) *models.Report {
	t.Helper()
	r := &models.Report{
		ID:          uuid.New(),
		SubmittedBy: by,
		Title:       "Pothole",
		Content:     "Large pothole near the market",
		PhotoURL:    "https://img.example.test/p.jpg",
		Location:    models.Location{District: district, Block: block, Locality: "Ward 1"},
		Status:      models.StatusPending,
		Upvotes:     []uuid.UUID{},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if err := f.reports.Create(context.Background(), r); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return r
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
