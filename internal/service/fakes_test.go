package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mansoorceksport/eventhub/internal/domain"
)

type fakePackageRepo struct {
	mu       sync.Mutex
	packages []*domain.ListingPackage
	loads    int
	err      error
}

func newFakePackageRepo(pkgs ...*domain.ListingPackage) *fakePackageRepo {
	r := &fakePackageRepo{}
	for _, p := range pkgs {
		_ = r.Create(context.Background(), p)
	}
	return r
}

func (r *fakePackageRepo) Create(ctx context.Context, pkg *domain.ListingPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pkg.ID = fmt.Sprintf("pkg-%d", len(r.packages)+1)
	cp := *pkg
	r.packages = append(r.packages, &cp)
	return nil
}

func (r *fakePackageRepo) GetByID(ctx context.Context, id string) (*domain.ListingPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.packages {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePackageRepo) GetActivePackages(ctx context.Context) ([]*domain.ListingPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.err != nil {
		return nil, r.err
	}
	out := []*domain.ListingPackage{}
	for _, p := range r.packages {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DurationDays < out[j].DurationDays })
	return out, nil
}

func (r *fakePackageRepo) Update(ctx context.Context, pkg *domain.ListingPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.packages {
		if p.ID == pkg.ID {
			cp := *pkg
			r.packages[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakePackageRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.packages {
		if p.ID == id {
			p.IsActive = false
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakePackageRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.packages)), nil
}

func (r *fakePackageRepo) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	seq    int

	applied          map[string]string // event ID -> last invoice applied
	activateFailures int               // ActivateListing fails this many times first
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*domain.Event{}, applied: map[string]string{}}
}

func (r *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e.ID = fmt.Sprintf("evt-%d", r.seq)
	e.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Second)
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for _, id := range ids {
		if e, err := r.GetByID(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) filter(keep func(*domain.Event) bool) []*domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *fakeEventRepo) ListListed(ctx context.Context, category string, now time.Time) ([]*domain.Event, error) {
	return r.filter(func(e *domain.Event) bool {
		return e.IsListed(now) &&
			(category == "" || category == domain.CategoryAll || e.Category == category)
	}), nil
}

func (r *fakeEventRepo) GetByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return r.filter(func(e *domain.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (r *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeEventRepo) UpdateImageURL(ctx context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.ImageURL = url
	return nil
}

func (r *fakeEventRepo) ActivateListing(ctx context.Context, id, invoiceID string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activateFailures > 0 {
		r.activateFailures--
		return false, errors.New("connection reset")
	}
	e, ok := r.events[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.applied[id] == invoiceID {
		return false, nil
	}
	r.applied[id] = invoiceID
	e.ListingStatus = domain.ListingStatusActive
	e.ListingExpiresAt = &expiresAt
	return true, nil
}

func (r *fakeEventRepo) ExpireListing(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.ListingStatus != domain.ListingStatusActive ||
		e.ListingExpiresAt == nil || e.ListingExpiresAt.After(now) {
		return false, nil
	}
	e.ListingStatus = domain.ListingStatusExpired
	return true, nil
}

// setListing puts an event straight into a listing state
func (r *fakeEventRepo) setListing(id, status string, expiresAt *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.events[id]
	e.ListingStatus = status
	e.ListingExpiresAt = expiresAt
}

func (r *fakeEventRepo) ListExpiredListings(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	return r.filter(func(e *domain.Event) bool {
		return e.ListingStatus == domain.ListingStatusActive &&
			e.ListingExpiresAt != nil && !e.ListingExpiresAt.After(now)
	}), nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

type fakeRSVPRepo struct {
	mu    sync.Mutex
	rsvps []*domain.RSVP
}

func (r *fakeRSVPRepo) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rsvps {
		if existing.EventID == rsvp.EventID && existing.UserID == rsvp.UserID {
			existing.Status = rsvp.Status
			*rsvp = *existing
			return nil
		}
	}
	rsvp.ID = fmt.Sprintf("rsvp-%d", len(r.rsvps)+1)
	cp := *rsvp
	r.rsvps = append([]*domain.RSVP{&cp}, r.rsvps...)
	return nil
}

func (r *fakeRSVPRepo) Delete(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rsvps {
		if existing.EventID == eventID && existing.UserID == userID {
			r.rsvps = append(r.rsvps[:i], r.rsvps[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeRSVPRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rsvps[:0]
	for _, existing := range r.rsvps {
		if existing.EventID != eventID {
			kept = append(kept, existing)
		}
	}
	r.rsvps = kept
	return nil
}

func (r *fakeRSVPRepo) GetByUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.RSVP{}
	for _, existing := range r.rsvps {
		if existing.UserID == userID {
			cp := *existing
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRSVPRepo) CountGoingByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, existing := range r.rsvps {
		if existing.Status == domain.RSVPStatusGoing {
			counts[existing.EventID]++
		}
	}
	return counts, nil
}

func (r *fakeRSVPRepo) GetStatusesByUser(ctx context.Context, userID string, eventIDs []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := map[string]string{}
	for _, existing := range r.rsvps {
		if existing.UserID == userID {
			statuses[existing.EventID] = existing.Status
		}
	}
	return statuses, nil
}

type fakeSavedRepo struct {
	mu    sync.Mutex
	saved []*domain.SavedEvent
}

func (r *fakeSavedRepo) Save(ctx context.Context, s *domain.SavedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.saved {
		if existing.EventID == s.EventID && existing.UserID == s.UserID {
			s.ID = existing.ID
			return nil
		}
	}
	s.ID = fmt.Sprintf("saved-%d", len(r.saved)+1)
	cp := *s
	r.saved = append([]*domain.SavedEvent{&cp}, r.saved...)
	return nil
}

func (r *fakeSavedRepo) Unsave(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.saved {
		if existing.EventID == eventID && existing.UserID == userID {
			r.saved = append(r.saved[:i], r.saved[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeSavedRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.saved[:0]
	for _, existing := range r.saved {
		if existing.EventID != eventID {
			kept = append(kept, existing)
		}
	}
	r.saved = kept
	return nil
}

func (r *fakeSavedRepo) GetByUser(ctx context.Context, userID string) ([]*domain.SavedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.SavedEvent{}
	for _, existing := range r.saved {
		if existing.UserID == userID {
			cp := *existing
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSavedRepo) GetSavedEventIDs(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, existing := range r.saved {
		if existing.UserID == userID {
			out[existing.EventID] = true
		}
	}
	return out, nil
}

type fakeAdminSettingRepo struct {
	settings map[string]*domain.AdminSetting
}

func (r *fakeAdminSettingRepo) GetByKey(ctx context.Context, key string) (*domain.AdminSetting, error) {
	if s, ok := r.settings[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAdminSettingRepo) Upsert(ctx context.Context, s *domain.AdminSetting) error {
	if r.settings == nil {
		r.settings = map[string]*domain.AdminSetting{}
	}
	if existing, ok := r.settings[s.Key]; ok {
		s.ID = existing.ID
	} else {
		s.ID = fmt.Sprintf("setting-%d", len(r.settings)+1)
	}
	cp := *s
	r.settings[s.Key] = &cp
	return nil
}

func (r *fakeAdminSettingRepo) GetAll(ctx context.Context) ([]*domain.AdminSetting, error) {
	keys := make([]string, 0, len(r.settings))
	for k := range r.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := []*domain.AdminSetting{}
	for _, k := range keys {
		cp := *r.settings[k]
		out = append(out, &cp)
	}
	return out, nil
}

type fakePaymentSettingsRepo struct {
	active *domain.PaymentSettings
}

func (r *fakePaymentSettingsRepo) GetActive(ctx context.Context) (*domain.PaymentSettings, error) {
	if r.active == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r.active
	return &cp, nil
}

func (r *fakePaymentSettingsRepo) Create(ctx context.Context, s *domain.PaymentSettings) error {
	s.ID = "ps-1"
	s.IsActive = true
	cp := *s
	r.active = &cp
	return nil
}

func (r *fakePaymentSettingsRepo) Update(ctx context.Context, s *domain.PaymentSettings) error {
	if r.active == nil {
		return domain.ErrNotFound
	}
	cp := *s
	r.active = &cp
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*domain.Invoice
	seq      int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*domain.Invoice{}}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	r.seq++
	inv.ID = fmt.Sprintf("inv-%d", r.seq)
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if inv, ok := r.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) GetPendingByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.UserID == userID && inv.EventID == eventID &&
			inv.Status == domain.InvoiceStatusPending && inv.ExpiryDate.After(time.Now()) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) GetByPaymentSessionID(ctx context.Context, sid string) (*domain.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.PaymentSessionID == sid {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	inv, ok := r.invoices[id]
	if !ok || inv.Status == domain.InvoiceStatusPaid {
		return domain.ErrNotFound
	}
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	return nil
}

func (r *fakeInvoiceRepo) MarkListed(ctx context.Context, id string, listedAt time.Time) error {
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ListedAt = &listedAt
	return nil
}

func (r *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.FirebaseUID != "" && u.FirebaseUID == uid })
}

func (r *fakeUserRepo) UpdateFirebaseUID(ctx context.Context, id, uid string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.FirebaseUID = uid
	return nil
}

func (r *fakeUserRepo) AddRole(ctx context.Context, id, role string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

type fakeFileRepo struct {
	keys []string
}

func (r *fakeFileRepo) Upload(ctx context.Context, file []byte, key, contentType string) (string, error) {
	r.keys = append(r.keys, key)
	return "http://files.local/event-images/" + key, nil
}

type fakePaymentProvider struct {
	calls []VARequest
	err   error
}

func (p *fakePaymentProvider) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.calls = append(p.calls, req)
	return &VAResponse{
		VANumber:  fmt.Sprintf("VA-%d", len(p.calls)),
		SessionID: fmt.Sprintf("sess-%d", len(p.calls)),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}
