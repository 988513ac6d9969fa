package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"health-program-api/internal/domain/entity"
	"health-program-api/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// users

type fakeUserRepo struct {
	byID map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	for _, u := range r.byID {
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type fakeRoleRepo struct{}

func (fakeRoleRepo) FindByName(_ context.Context, name string) (*entity.Role, error) {
	switch name {
	case entity.RoleAdmin:
		return &entity.Role{ID: entity.RoleIDAdmin, RoleName: name}, nil
	case entity.RoleDoctor:
		return &entity.Role{ID: entity.RoleIDDoctor, RoleName: name}, nil
	case entity.RoleRegistrar:
		return &entity.Role{ID: entity.RoleIDRegistrar, RoleName: name}, nil
	}
	return nil, nil
}

// otps

type fakeOTPRepo struct {
	nextID int64
	rows   []*entity.OTP
}

func (r *fakeOTPRepo) Replace(_ context.Context, otp *entity.OTP) error {
	kept := r.rows[:0]
	for _, o := range r.rows {
		if o.UserID != otp.UserID {
			kept = append(kept, o)
		}
	}
	r.nextID++
	otp.ID = r.nextID
	cp := *otp
	r.rows = append(kept, &cp)
	return nil
}

func (r *fakeOTPRepo) FindUnused(_ context.Context, userID uuid.UUID, codeHash string) (*entity.OTP, error) {
	for _, o := range r.rows {
		if o.UserID == userID && o.CodeHash == codeHash && !o.IsUsed {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOTPRepo) MarkUsed(_ context.Context, id int64) (bool, error) {
	for _, o := range r.rows {
		if o.ID == id && !o.IsUsed {
			o.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOTPRepo) forUser(userID uuid.UUID) []*entity.OTP {
	var out []*entity.OTP
	for _, o := range r.rows {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// auth tokens

type fakeTokenRepo struct {
	rows    map[uuid.UUID]*entity.AuthToken
	creates int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: map[uuid.UUID]*entity.AuthToken{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *entity.AuthToken) error {
	for _, t := range r.rows {
		if t.UserID == token.UserID {
			return uniqueViolation("auth_tokens_user_id_key")
		}
	}
	r.creates++
	cp := *token
	r.rows[token.ID] = &cp
	return nil
}

func (r *fakeTokenRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.AuthToken, error) {
	if t, ok := r.rows[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.AuthToken, error) {
	for _, t := range r.rows {
		if t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeTokenCache struct {
	entries map[uuid.UUID]*service.CachedToken
	gets    int
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{entries: map[uuid.UUID]*service.CachedToken{}}
}

func (c *fakeTokenCache) Get(_ context.Context, id uuid.UUID) (*service.CachedToken, error) {
	c.gets++
	if t, ok := c.entries[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeTokenCache) Set(_ context.Context, id uuid.UUID, token *service.CachedToken) error {
	cp := *token
	c.entries[id] = &cp
	return nil
}

func (c *fakeTokenCache) Delete(_ context.Context, id uuid.UUID) error {
	delete(c.entries, id)
	return nil
}

type fakeLimiter struct {
	max      int64
	failures map[string]int64
}

func newFakeLimiter(max int64) *fakeLimiter {
	return &fakeLimiter{max: max, failures: map[string]int64{}}
}

func (l *fakeLimiter) Exceeded(_ context.Context, username string) (bool, error) {
	return l.failures[username] >= l.max, nil
}

func (l *fakeLimiter) RecordFailure(_ context.Context, username string) (int64, error) {
	l.failures[username]++
	return l.failures[username], nil
}

func (l *fakeLimiter) Reset(_ context.Context, username string) error {
	delete(l.failures, username)
	return nil
}

// audit + events

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *fakeAudit) add(action string) {
	a.mu.Lock()
	a.actions = append(a.actions, action)
	a.mu.Unlock()
}

func (a *fakeAudit) LogAction(_ context.Context, _ *uuid.UUID, action string, _ map[string]any) {
	a.add(action)
}

func (a *fakeAudit) LogCreate(_ context.Context, _ *uuid.UUID, action, _, _ string, _ any) {
	a.add(action)
}

func (a *fakeAudit) LogUpdate(_ context.Context, _ *uuid.UUID, action, _, _ string, _, _ any) {
	a.add(action)
}

func (a *fakeAudit) LogDelete(_ context.Context, _ *uuid.UUID, action, _, _ string, _ any) {
	a.add(action)
}

type published struct {
	subject string
	payload any
}

type fakePublisher struct {
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{subject: subject, payload: data})
	return nil
}

func (p *fakePublisher) subjects() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

// programs

type fakeProgramRepo struct {
	nextID int64
	rows   map[int64]*entity.HealthProgram

	count       int64
	recent, top []entity.ProgramWithCount
	err         error
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{rows: map[int64]*entity.HealthProgram{}}
}

func (r *fakeProgramRepo) checkUnique(p *entity.HealthProgram) error {
	for _, existing := range r.rows {
		if existing.ID == p.ID {
			continue
		}
		if existing.Name == p.Name {
			return uniqueViolation("health_programs_name_key")
		}
		if existing.Code == p.Code {
			return uniqueViolation("health_programs_code_key")
		}
	}
	return nil
}

func (r *fakeProgramRepo) Create(_ context.Context, p *entity.HealthProgram) error {
	if err := r.checkUnique(p); err != nil {
		return err
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakeProgramRepo) FindAll(_ context.Context, _ entity.ProgramFilter, _, _ int) ([]entity.HealthProgram, int64, error) {
	var out []entity.HealthProgram
	for _, p := range r.rows {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *fakeProgramRepo) FindByID(_ context.Context, id int64) (*entity.HealthProgram, error) {
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProgramRepo) Update(_ context.Context, p *entity.HealthProgram) error {
	if err := r.checkUnique(p); err != nil {
		return err
	}
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakeProgramRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *fakeProgramRepo) Count(context.Context) (int64, error) { return r.count, r.err }

func (r *fakeProgramRepo) FindRecentWithCounts(context.Context, int) ([]entity.ProgramWithCount, error) {
	return r.recent, r.err
}

func (r *fakeProgramRepo) FindTopByEnrollments(context.Context, int) ([]entity.ProgramWithCount, error) {
	return r.top, r.err
}

// clients

type fakeClientRepo struct {
	rows map[uuid.UUID]*entity.Client

	count, enrolled int64
	recent          []entity.ClientWithCount
	lastFilter      entity.ClientFilter
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{rows: map[uuid.UUID]*entity.Client{}}
}

func (r *fakeClientRepo) checkUnique(c *entity.Client) error {
	for _, existing := range r.rows {
		if existing.ID == c.ID {
			continue
		}
		if existing.Email == c.Email {
			return uniqueViolation("clients_email_key")
		}
		if existing.NationalID != nil && c.NationalID != nil && *existing.NationalID == *c.NationalID {
			return uniqueViolation("clients_national_id_key")
		}
	}
	return nil
}

func (r *fakeClientRepo) Create(_ context.Context, c *entity.Client) error {
	if err := r.checkUnique(c); err != nil {
		return err
	}
	c.ID = uuid.New()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) FindAll(_ context.Context, filter entity.ClientFilter, _, _ int) ([]entity.Client, int64, error) {
	r.lastFilter = filter
	var out []entity.Client
	for _, c := range r.rows {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Client, error) {
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeClientRepo) FindByIDWithEnrollments(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeClientRepo) Update(_ context.Context, c *entity.Client) error {
	if err := r.checkUnique(c); err != nil {
		return err
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *fakeClientRepo) Count(context.Context) (int64, error)         { return r.count, nil }
func (r *fakeClientRepo) CountEnrolled(context.Context) (int64, error) { return r.enrolled, nil }

func (r *fakeClientRepo) FindRecentWithCounts(context.Context, int) ([]entity.ClientWithCount, error) {
	return r.recent, nil
}

// enrollments

type fakeEnrollmentRepo struct {
	nextID int64
	rows   map[int64]*entity.Enrollment

	// hideExisting makes FindByClientAndProgram miss, as when a concurrent
	// request inserts between the check and the insert.
	hideExisting bool

	monthly   []entity.MonthlyCount
	sinceSeen time.Time
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{rows: map[int64]*entity.Enrollment{}}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *entity.Enrollment) error {
	for _, existing := range r.rows {
		if existing.ClientID == e.ClientID && existing.ProgramID == e.ProgramID {
			return uniqueViolation("enrollments_client_id_program_id_key")
		}
	}
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) FindAll(_ context.Context, _ entity.EnrollmentFilter, _, _ int) ([]entity.Enrollment, int64, error) {
	var out []entity.Enrollment
	for _, e := range r.rows {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeEnrollmentRepo) FindByID(_ context.Context, id int64) (*entity.Enrollment, error) {
	if e, ok := r.rows[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeEnrollmentRepo) FindByClientAndProgram(_ context.Context, clientID uuid.UUID, programID int64) (*entity.Enrollment, error) {
	if r.hideExisting {
		return nil, nil
	}
	for _, e := range r.rows {
		if e.ClientID == clientID && e.ProgramID == programID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *entity.Enrollment) error {
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *fakeEnrollmentRepo) CountByMonthSince(_ context.Context, since time.Time) ([]entity.MonthlyCount, error) {
	r.sinceSeen = since
	return r.monthly, nil
}
